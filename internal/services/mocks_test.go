package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"enrolpulse/internal/dataset"
	"enrolpulse/pkg/contracts/domain"
)

// MockDatasetSource is a mock for the DatasetSource interface
type MockDatasetSource struct {
	mock.Mock
}

func (m *MockDatasetSource) Get(ctx context.Context) (*dataset.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataset.Dataset), args.Error(1)
}

// MockDatasetStatus is a mock for the DatasetStatus interface
type MockDatasetStatus struct {
	mock.Mock
}

func (m *MockDatasetStatus) Info() (domain.DatasetInfo, bool) {
	args := m.Called()
	return args.Get(0).(domain.DatasetInfo), args.Bool(1)
}

func (m *MockDatasetStatus) Path() string {
	return m.Called().String(0)
}

// MockSessionCounter is a mock for the SessionCounter interface
type MockSessionCounter struct {
	mock.Mock
}

func (m *MockSessionCounter) ClientCount() int {
	return m.Called().Int(0)
}

func (m *MockSessionCounter) GetHubMetrics() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}
