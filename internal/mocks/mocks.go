// Package mocks holds testify mocks for the domain ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/davidbz/quill/internal/domain"
)

// Provider is a mock of domain.Provider.
type Provider struct {
	mock.Mock
}

// NewMockProvider creates a Provider mock that asserts its expectations on cleanup.
func NewMockProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *Provider {
	m := &Provider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Provider) Generate(ctx context.Context, opts *domain.GenerateOptions) (*domain.Generation, error) {
	args := m.Called(ctx, opts)
	gen, _ := args.Get(0).(*domain.Generation)
	return gen, args.Error(1)
}

func (m *Provider) Name() string {
	return m.Called().String(0)
}

func (m *Provider) IsModelSupported(ctx context.Context, model string) bool {
	return m.Called(ctx, model).Bool(0)
}

func (m *Provider) SupportedModels(ctx context.Context) []string {
	models, _ := m.Called(ctx).Get(0).([]string)
	return models
}

// ProviderRegistry is a mock of domain.ProviderRegistry.
type ProviderRegistry struct {
	mock.Mock
}

// NewMockProviderRegistry creates a ProviderRegistry mock that asserts its expectations on cleanup.
func NewMockProviderRegistry(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProviderRegistry {
	m := &ProviderRegistry{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ProviderRegistry) Register(ctx context.Context, provider domain.Provider) error {
	return m.Called(ctx, provider).Error(0)
}

func (m *ProviderRegistry) Get(ctx context.Context, providerName string) (domain.Provider, error) {
	args := m.Called(ctx, providerName)
	provider, _ := args.Get(0).(domain.Provider)
	return provider, args.Error(1)
}

func (m *ProviderRegistry) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *ProviderRegistry) GetByModel(ctx context.Context, model string) (domain.Provider, error) {
	args := m.Called(ctx, model)
	provider, _ := args.Get(0).(domain.Provider)
	return provider, args.Error(1)
}

// Router is a mock of domain.Router.
type Router struct {
	mock.Mock
}

// NewMockRouter creates a Router mock that asserts its expectations on cleanup.
func NewMockRouter(t interface {
	mock.TestingT
	Cleanup(func())
}) *Router {
	m := &Router{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Router) Route(ctx context.Context, model string) (string, error) {
	args := m.Called(ctx, model)
	return args.String(0), args.Error(1)
}

// ResponseCache is a mock of domain.ResponseCache.
type ResponseCache struct {
	mock.Mock
}

// NewMockResponseCache creates a ResponseCache mock that asserts its expectations on cleanup.
func NewMockResponseCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *ResponseCache {
	m := &ResponseCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ResponseCache) Get(ctx context.Context, key string) (*domain.CompletionResponse, error) {
	args := m.Called(ctx, key)
	resp, _ := args.Get(0).(*domain.CompletionResponse)
	return resp, args.Error(1)
}

func (m *ResponseCache) Set(ctx context.Context, key string, resp *domain.CompletionResponse, ttl time.Duration) error {
	return m.Called(ctx, key, resp, ttl).Error(0)
}
