package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pivotalcli/models"
)

// SchemaVersion は設定ファイルの形式です
type SchemaVersion int

const (
	// SchemaLegacy は単数形の username キーを使う旧形式です（非推奨）
	SchemaLegacy SchemaVersion = 1
	// SchemaCurrent は usernames キーを使う現行形式です
	SchemaCurrent SchemaVersion = 2
)

// 設定ファイルのキー
const (
	keyUsername  = "username"
	keyUsernames = "usernames"
	keyUserMap   = "username_to_user_id_map"
)

// fileSchema は設定ファイルの既知のキーです
type fileSchema struct {
	APIToken  string           `yaml:"api_token"`
	ProjectID string           `yaml:"project_id"`
	Username  string           `yaml:"username"`
	Usernames []string         `yaml:"usernames"`
	UserMap   models.Directory `yaml:"username_to_user_id_map"`
}

// Document はディスク上の設定ファイル全体を表します。
// 未知のキーは書き戻し時も保持されます。
type Document struct {
	path    string
	root    *yaml.Node
	schema  fileSchema
	version SchemaVersion
}

// ReadDocument は設定ファイルを読み込みます。ファイルが存在しない場合は空のドキュメントを返します
func ReadDocument(path string) (*Document, error) {
	doc := &Document{path: path, version: SchemaCurrent}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("設定ファイル解析エラー: %w", err)
	}
	if root.Kind == 0 {
		// 空ファイル
		return doc, nil
	}
	if err := root.Decode(&doc.schema); err != nil {
		return nil, fmt.Errorf("設定ファイル解析エラー: %w", err)
	}
	doc.root = &root

	if len(doc.schema.Usernames) == 0 && doc.schema.Username != "" {
		doc.version = SchemaLegacy
	}
	return doc, nil
}

// Path は設定ファイルのパスを返します
func (d *Document) Path() string {
	return d.path
}

// Version は読み込み時に検出した形式を返します
func (d *Document) Version() SchemaVersion {
	return d.version
}

// Usernames は対象ユーザー名の一覧を返します。旧形式では単一のユーザー名になります
func (d *Document) Usernames() []string {
	if d.version == SchemaLegacy {
		return []string{d.schema.Username}
	}
	return append([]string(nil), d.schema.Usernames...)
}

// Directory はキャッシュ済みのユーザーディレクトリを返します
func (d *Document) Directory() models.Directory {
	dir := make(models.Directory, len(d.schema.UserMap))
	for k, v := range d.schema.UserMap {
		dir[k] = v
	}
	return dir
}

// SetDirectory はユーザーディレクトリを丸ごと置き換えます
func (d *Document) SetDirectory(dir models.Directory) {
	d.schema.UserMap = dir
}

// Save は設定ファイル全体を現行形式で上書き保存します
func (d *Document) Save() error {
	if d.root == nil || len(d.root.Content) == 0 {
		d.root = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	m := d.root.Content[0]

	if usernames := d.Usernames(); len(usernames) > 0 {
		if err := setKey(m, keyUsernames, usernames); err != nil {
			return err
		}
		deleteKey(m, keyUsername)
	}
	if err := setKey(m, keyUserMap, d.schema.UserMap); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return fmt.Errorf("設定ファイルエンコードエラー: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("設定ファイルエンコードエラー: %w", err)
	}

	if err := writeFileAtomic(d.path, buf.Bytes()); err != nil {
		return err
	}
	d.version = SchemaCurrent
	d.schema.Usernames = d.Usernames()
	d.schema.Username = ""
	return nil
}

func setKey(m *yaml.Node, key string, value interface{}) error {
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("キー %s のエンコードエラー: %w", key, err)
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = &n
			return nil
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &n)
	return nil
}

func deleteKey(m *yaml.Node, key string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}

// 一時ファイルに書いてからリネームします
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pt-*.tmp")
	if err != nil {
		return fmt.Errorf("一時ファイル作成エラー: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("一時ファイル書き込みエラー: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("パーミッション設定エラー: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("一時ファイルクローズエラー: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("設定ファイル保存エラー: %w", err)
	}
	return nil
}
