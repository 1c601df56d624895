package services

import (
	"context"
	"time"

	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type MockCheckpointStore struct {
	mock.Mock
}

func (m *MockCheckpointStore) LastScan(ctx context.Context, id models.RepoIdentity, freshMirror bool) (time.Time, error) {
	args := m.Called(ctx, id, freshMirror)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockCheckpointStore) RecordScan(ctx context.Context, id models.RepoIdentity, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockCheckpointStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockRepositoryMirror struct {
	mock.Mock
}

func (m *MockRepositoryMirror) Ensure(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type MockChangeHarvester struct {
	mock.Mock
}

func (m *MockChangeHarvester) Harvest(ctx context.Context, since time.Time) (string, error) {
	args := m.Called(ctx, since)
	return args.String(0), args.Error(1)
}

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
