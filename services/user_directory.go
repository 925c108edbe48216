package services

import (
	"context"
	"fmt"

	"pivotalcli/models"
	"pivotalcli/utils"
)

// MemberLister はプロジェクトメンバーを取得します
type MemberLister interface {
	ListMembers(ctx context.Context) (models.Directory, error)
}

// DirectoryStore はユーザーディレクトリの永続化先です
type DirectoryStore interface {
	Directory() models.Directory
	SetDirectory(dir models.Directory)
	Save() error
}

// UserDirectory はユーザー名→{ID, 名前}のキャッシュを管理します
type UserDirectory struct {
	lister MemberLister
	store  DirectoryStore
}

// NewUserDirectory は新しいユーザーディレクトリを作成します
func NewUserDirectory(lister MemberLister, store DirectoryStore) *UserDirectory {
	return &UserDirectory{
		lister: lister,
		store:  store,
	}
}

// LoadOrBuild は保存済みのディレクトリを返します。無い場合はAPIから作成して保存します
func (u *UserDirectory) LoadOrBuild(ctx context.Context) (models.Directory, error) {
	if dir := u.store.Directory(); len(dir) > 0 {
		utils.LogDebug("キャッシュ済みのユーザーディレクトリを使用します: %d 件", len(dir))
		for username, entry := range dir {
			if entry.Name == "" {
				utils.LogWarn("ユーザー %s の表示名がありません（旧形式のキャッシュ）。pt refresh を実行してください", username)
				break
			}
		}
		return dir, nil
	}

	utils.LogInfo("ユーザーディレクトリが無いため作成します")
	return u.Rebuild(ctx)
}

// Rebuild はAPIからディレクトリを作り直し、設定ファイルを上書き保存します。
// 取得に失敗した場合は空のディレクトリを返し、保存はしません。
func (u *UserDirectory) Rebuild(ctx context.Context) (models.Directory, error) {
	dir, err := u.lister.ListMembers(ctx)
	if err != nil {
		return models.Directory{}, fmt.Errorf("メンバー取得エラー: %w", err)
	}

	u.store.SetDirectory(dir)
	if err := u.store.Save(); err != nil {
		return dir, fmt.Errorf("ユーザーディレクトリ保存エラー: %w", err)
	}

	utils.LogInfo("ユーザーディレクトリを保存しました: %d 件", len(dir))
	return dir, nil
}

// UserIDs は指定ユーザー名のIDを返します。ディレクトリに無いユーザー名は無視します
func UserIDs(dir models.Directory, usernames []string) []int64 {
	ids := make([]int64, 0, len(usernames))
	for _, name := range usernames {
		if entry, ok := dir[name]; ok {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}
