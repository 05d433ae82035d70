// Package mocks provides test doubles for the brave client.
package mocks

import (
	"context"

	brave "github.com/sells-group/homepage-finder/pkg/brave"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// WebSearch provides a mock function with given fields: ctx, query, count
func (_m *MockClient) WebSearch(ctx context.Context, query string, count int) (*brave.WebSearchResponse, error) {
	ret := _m.Called(ctx, query, count)

	if len(ret) == 0 {
		panic("no return value specified for WebSearch")
	}

	var r0 *brave.WebSearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) (*brave.WebSearchResponse, error)); ok {
		return rf(ctx, query, count)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int) *brave.WebSearchResponse); ok {
		r0 = rf(ctx, query, count)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*brave.WebSearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int) error); ok {
		r1 = rf(ctx, query, count)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
