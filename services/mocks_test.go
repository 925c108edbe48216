package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pivotalcli/models"
)

type trackerMock struct{ mock.Mock }

var _ Tracker = (*trackerMock)(nil)

func (m *trackerMock) CheckAuth(ctx context.Context) (*models.Person, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Person), args.Error(1)
}

func (m *trackerMock) GetStory(ctx context.Context, storyID string) (*models.Story, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *trackerMock) UpdateStoryState(ctx context.Context, storyID, state string, ownerIDs []int64) (string, error) {
	args := m.Called(ctx, storyID, state, ownerIDs)
	return args.String(0), args.Error(1)
}

func (m *trackerMock) SearchStoriesByOwners(ctx context.Context, usernames []string) ([]models.Story, error) {
	args := m.Called(ctx, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Story), args.Error(1)
}

func (m *trackerMock) GetBacklog(ctx context.Context, limit int) ([]models.Story, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Story), args.Error(1)
}

type listerMock struct{ mock.Mock }

var _ MemberLister = (*listerMock)(nil)

func (m *listerMock) ListMembers(ctx context.Context) (models.Directory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Directory), args.Error(1)
}
