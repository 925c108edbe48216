package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ストーリー種別
const (
	StoryTypeFeature = "feature"
	StoryTypeBug     = "bug"
	StoryTypeChore   = "chore"
	StoryTypeRelease = "release"
)

// ストーリーの状態
const (
	StateUnstarted   = "unstarted"
	StateStarted     = "started"
	StateFinished    = "finished"
	StateDelivered   = "delivered"
	StateRejected    = "rejected"
	StateAccepted    = "accepted"
	StatePlanned     = "planned"
	StateUnscheduled = "unscheduled"
)

// Story はPivotalTrackerのストーリーを表します
type Story struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	StoryType    string  `json:"story_type"`
	CurrentState string  `json:"current_state"`
	OwnerIDs     []int64 `json:"owner_ids"`
	Estimate     *int    `json:"estimate,omitempty"`
	Labels       []Label `json:"labels"`
	URL          string  `json:"url"`
}

// IsChore はストーリーがchoreかどうかを返します
func (s Story) IsChore() bool {
	return s.StoryType == StoryTypeChore
}

// Label はストーリーに付与されたラベルです
type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Person はTrackerのユーザーです
type Person struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
}

// Membership はプロジェクトメンバーシップを表します
type Membership struct {
	ID     int64  `json:"id"`
	Role   string `json:"role"`
	Person Person `json:"person"`
}

// Iteration はバックログのイテレーションです
type Iteration struct {
	Number  int     `json:"number"`
	Start   string  `json:"start"`
	Finish  string  `json:"finish"`
	Stories []Story `json:"stories"`
}

// DirectoryEntry はユーザー名に対応するユーザーIDと表示名です
type DirectoryEntry struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// UnmarshalYAML は旧形式（整数のみ）と現行形式（{id, name}）の両方を受け付けます
func (e *DirectoryEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var id int64
		if err := node.Decode(&id); err != nil {
			return fmt.Errorf("ユーザーIDの解析エラー: %w", err)
		}
		*e = DirectoryEntry{ID: id}
		return nil
	case yaml.MappingNode:
		type plain DirectoryEntry
		var p plain
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("ユーザーエントリの解析エラー: %w", err)
		}
		*e = DirectoryEntry(p)
		return nil
	default:
		return fmt.Errorf("不正なユーザーエントリ (行 %d)", node.Line)
	}
}

// Directory はユーザー名からエントリへのマッピングです
type Directory map[string]DirectoryEntry

// NameForID は指定IDの表示名を線形探索で探します。
// 旧形式のエントリは名前を持たないため、ユーザー名を返します。
func (d Directory) NameForID(id int64) (string, bool) {
	for username, entry := range d {
		if entry.ID == id {
			if entry.Name == "" {
				return username, true
			}
			return entry.Name, true
		}
	}
	return "", false
}
