package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pivotalcli/config"
	"pivotalcli/models"
	"pivotalcli/utils"
)

// DefaultBacklogIterations は backlog で取得するイテレーション数の既定値です
const DefaultBacklogIterations = 3

// TrackerClient はPivotalTracker APIとのやり取りを処理します
type TrackerClient struct {
	config config.Config
	client *http.Client
}

// Option はTrackerClientの設定を変更します
type Option func(*TrackerClient)

// WithHTTPClient は使用するHTTPクライアントを差し替えます
func WithHTTPClient(c *http.Client) Option {
	return func(t *TrackerClient) {
		t.client = c
	}
}

// NewTrackerClient は新しいTrackerクライアントを作成します
func NewTrackerClient(cfg config.Config, opts ...Option) *TrackerClient {
	t := &TrackerClient{
		config: cfg,
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckAuth はAPIトークンを確認し、トークンの持ち主を返します
func (t *TrackerClient) CheckAuth(ctx context.Context) (*models.Person, error) {
	var me models.Person
	if err := t.do(ctx, http.MethodGet, t.config.BaseURL+"/me", nil, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// ListMembers はプロジェクトメンバーのユーザー名→{ID, 名前}のマッピングを取得します
func (t *TrackerClient) ListMembers(ctx context.Context) (models.Directory, error) {
	var memberships []models.Membership
	if err := t.do(ctx, http.MethodGet, t.projectURL("memberships"), nil, nil, &memberships); err != nil {
		return nil, err
	}

	dir := make(models.Directory, len(memberships))
	for _, m := range memberships {
		dir[m.Person.Username] = models.DirectoryEntry{ID: m.Person.ID, Name: m.Person.Name}
	}
	utils.LogDebug("メンバーを取得しました: %d 件", len(dir))
	return dir, nil
}

// GetStory はストーリーを1件取得します
func (t *TrackerClient) GetStory(ctx context.Context, storyID string) (*models.Story, error) {
	var story models.Story
	if err := t.do(ctx, http.MethodGet, t.projectURL("stories", storyID), nil, nil, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

// storyUpdate は状態更新リクエストのボディです
type storyUpdate struct {
	CurrentState string  `json:"current_state"`
	OwnerIDs     []int64 `json:"owner_ids,omitempty"`
}

// UpdateStoryState はストーリーの状態を更新し、確認メッセージを返します
func (t *TrackerClient) UpdateStoryState(ctx context.Context, storyID, state string, ownerIDs []int64) (string, error) {
	body := storyUpdate{CurrentState: state, OwnerIDs: ownerIDs}
	if err := t.do(ctx, http.MethodPut, t.projectURL("stories", storyID), nil, body, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("Story #%s successfully %s.", storyID, state), nil
}

// searchResult は検索APIのレスポンスです
type searchResult struct {
	Stories struct {
		Stories []models.Story `json:"stories"`
	} `json:"stories"`
}

// SearchStoriesByOwners は指定ユーザーのいずれかが担当するストーリーを1回の検索で取得します
func (t *TrackerClient) SearchStoriesByOwners(ctx context.Context, usernames []string) ([]models.Story, error) {
	query := url.Values{}
	query.Set("query", BuildOwnerQuery(usernames))

	var result searchResult
	if err := t.do(ctx, http.MethodGet, t.projectURL("search"), query, nil, &result); err != nil {
		return nil, err
	}
	return result.Stories.Stories, nil
}

// BuildOwnerQuery は owner:"u1" OR owner:"u2" 形式の検索式を作ります
func BuildOwnerQuery(usernames []string) string {
	parts := make([]string, 0, len(usernames))
	for _, u := range usernames {
		parts = append(parts, fmt.Sprintf(`owner:"%s"`, u))
	}
	return strings.Join(parts, " OR ")
}

// GetBacklog は現在のバックログから直近 limit 件のイテレーションのストーリーを返します
func (t *TrackerClient) GetBacklog(ctx context.Context, limit int) ([]models.Story, error) {
	if limit <= 0 {
		limit = DefaultBacklogIterations
	}
	query := url.Values{}
	query.Set("scope", "current_backlog")
	query.Set("limit", strconv.Itoa(limit))

	var iterations []models.Iteration
	if err := t.do(ctx, http.MethodGet, t.projectURL("iterations"), query, nil, &iterations); err != nil {
		return nil, err
	}

	var stories []models.Story
	for _, it := range iterations {
		stories = append(stories, it.Stories...)
	}
	return stories, nil
}

func (t *TrackerClient) projectURL(parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "projects", url.PathEscape(t.config.ProjectID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return t.config.BaseURL + "/" + strings.Join(escaped, "/")
}

// do はリクエストを送信し、成功時はレスポンスを out にデコードします
func (t *TrackerClient) do(ctx context.Context, method, endpoint string, query url.Values, payload, out interface{}) error {
	if query != nil {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("JSONエンコードエラー: %w", err)
		}
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	req.Header.Set("X-TrackerToken", t.config.APIToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	utils.LogDebug("%s %s", method, endpoint)
	resp, err := t.client.Do(req)
	if err != nil {
		utils.LogWarn("リクエスト送信エラー: %v", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("レスポンス解析エラー: %w", err)
	}
	return nil
}

// decodeError は失敗レスポンスからAPIErrorを作ります
func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, apiErr); err != nil {
			utils.LogDebug("エラーレスポンスを解析できません: %s", string(data))
			apiErr = &APIError{}
		}
	}
	apiErr.StatusCode = resp.StatusCode
	utils.LogDebug("APIエラー: %s", apiErr.Detail())
	return apiErr
}
