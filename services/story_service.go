package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pivotalcli/config"
	"pivotalcli/models"
	"pivotalcli/utils"
)

// 画面に出す固定メッセージ
const (
	InvalidStatusMessage = "Invalid story status. Story statuses are: unstart, start, deliver, finish"
	NotFoundMessage      = "Story not found, please validate story number."
)

const (
	separatorWidth    = 40
	descriptionWidth  = 150
	descriptionOffset = 10
	descriptionIndent = 20
)

// ErrStoryNotFound はストーリーを取得できなかった場合のエラーです
var ErrStoryNotFound = errors.New("story not found")

// ErrInvalidStatus は update コマンドのキーワードが不正な場合のエラーです
var ErrInvalidStatus = errors.New("invalid story status")

// Tracker はStoryServiceが使うTracker APIの操作です
type Tracker interface {
	CheckAuth(ctx context.Context) (*models.Person, error)
	GetStory(ctx context.Context, storyID string) (*models.Story, error)
	UpdateStoryState(ctx context.Context, storyID, state string, ownerIDs []int64) (string, error)
	SearchStoriesByOwners(ctx context.Context, usernames []string) ([]models.Story, error)
	GetBacklog(ctx context.Context, limit int) ([]models.Story, error)
}

// StoryService は各コマンドの処理と表示を担当します
type StoryService struct {
	config    config.Config
	tracker   Tracker
	directory models.Directory
	out       io.Writer
	format    *utils.Formatter
}

// NewStoryService は新しいストーリーサービスを作成します
func NewStoryService(cfg config.Config, tracker Tracker, dir models.Directory, out io.Writer) *StoryService {
	return &StoryService{
		config:    cfg,
		tracker:   tracker,
		directory: dir,
		out:       out,
		format:    utils.NewFormatter(out, cfg.DisableMarkdown),
	}
}

// TargetState は update のキーワードとストーリーから遷移先の状態を決めます。
// finish は chore なら accepted、それ以外は finished になります。
func TargetState(keyword string, story models.Story) (string, error) {
	if keyword == "finish" {
		if story.IsChore() {
			return models.StateAccepted, nil
		}
		return models.StateFinished, nil
	}
	state, ok := config.StatusMapping[keyword]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, keyword)
	}
	return state, nil
}

// IsValidStatus はキーワードが update で使えるか返します
func IsValidStatus(keyword string) bool {
	for _, k := range config.StatusKeywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// UpdateStatus はストーリーの状態を更新し、結果を表示します
func (s *StoryService) UpdateStatus(ctx context.Context, storyID, keyword string) error {
	if !IsValidStatus(keyword) {
		s.println(InvalidStatusMessage)
		return nil
	}

	story, err := s.fetchStory(ctx, storyID)
	if err != nil {
		utils.LogDebug("ストーリー %s を取得できません: %v", storyID, err)
		s.println(NotFoundMessage)
		return nil
	}

	state, err := TargetState(keyword, *story)
	if err != nil {
		s.println(InvalidStatusMessage)
		return nil
	}

	ownerIDs := story.OwnerIDs
	if len(ownerIDs) == 0 {
		ownerIDs = UserIDs(s.directory, s.config.Usernames)
	}

	msg, err := s.tracker.UpdateStoryState(ctx, storyID, state, ownerIDs)
	if err != nil {
		utils.LogWarn("ストーリー %s の更新に失敗: %v", storyID, err)
		s.println(err.Error())
		return nil
	}
	s.println(msg)
	return nil
}

// ListMine は設定されたユーザーが担当するストーリーを表示します
func (s *StoryService) ListMine(ctx context.Context) error {
	defer utils.TrackTime(time.Now(), "ストーリー一覧")

	if len(s.config.Usernames) == 0 {
		return fmt.Errorf("%w: usernames", config.ErrMissingSetting)
	}

	stories, err := s.tracker.SearchStoriesByOwners(ctx, s.config.Usernames)
	if err != nil {
		s.println(err.Error())
		return nil
	}

	rule := strings.Repeat("*", separatorWidth)
	for _, story := range stories {
		s.println(rule)
		s.writeStory(story)
	}
	s.println(rule)
	return nil
}

// Show はストーリーを1件表示します
func (s *StoryService) Show(ctx context.Context, storyID string) error {
	story, err := s.tracker.GetStory(ctx, storyID)
	if err != nil {
		s.println(err.Error())
		return nil
	}
	s.writeStory(*story)
	return nil
}

// Backlog は直近 iterations 件のイテレーションのストーリーを1行ずつ表示します
func (s *StoryService) Backlog(ctx context.Context, iterations int) error {
	defer utils.TrackTime(time.Now(), "バックログ")

	stories, err := s.tracker.GetBacklog(ctx, iterations)
	if err != nil {
		s.println(err.Error())
		return nil
	}

	for _, story := range stories {
		s.println(s.BacklogLine(story))
	}
	return nil
}

// BacklogLine はバックログの1行を作ります
func (s *StoryService) BacklogLine(story models.Story) string {
	return fmt.Sprintf("* %s - %s - %s <%s>",
		s.format.Red(strconv.FormatInt(story.ID, 10)),
		s.format.ColorizeStatus(story.CurrentState),
		s.format.Embiggen(story.Name),
		ResolveOwnerNames(story.OwnerIDs, s.directory),
	)
}

// Whoami はAPIトークンの持ち主を表示します
func (s *StoryService) Whoami(ctx context.Context) error {
	me, err := s.tracker.CheckAuth(ctx)
	if err != nil {
		s.println(err.Error())
		return nil
	}
	s.printf("Authenticated as %s (%s)\n", me.Name, me.Username)
	return nil
}

// fetchStory は取得できなかった場合に ErrStoryNotFound を返します
func (s *StoryService) fetchStory(ctx context.Context, storyID string) (*models.Story, error) {
	story, err := s.tracker.GetStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoryNotFound, err)
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}
	return story, nil
}

func (s *StoryService) writeStory(story models.Story) {
	f := s.format
	s.printf("%s          : %d\n", f.Bold("Story ID"), story.ID)
	s.printf("%s            : %s\n", f.Bold("Status"), f.ColorizeStatus(story.CurrentState))
	s.printf("%s        : %s\n", f.Bold("Story Type"), story.StoryType)
	s.printf("%s        : %s\n", f.Bold("Story Name"), f.Embiggen(story.Name))
	s.printf("%s            : %s\n", f.Bold("Owners"), f.Yellow(ResolveOwnerNames(story.OwnerIDs, s.directory)))
	s.printf("%s :\n", f.Bold("Story Description"))

	desc := strings.Repeat(" ", descriptionIndent) + utils.Wrap(f.Embiggen(story.Description), descriptionWidth, descriptionOffset)
	if !strings.HasSuffix(desc, "\n") {
		desc += "\n"
	}
	s.printf("%s", desc)
}

func (s *StoryService) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *StoryService) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
