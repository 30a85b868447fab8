package integrations

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrProviderNotFound = errors.New("провайдер каталога журналов не найден")
	// ErrNoActiveProvider - живой каталог не настроен, поиск идёт только локально.
	ErrNoActiveProvider = errors.New("активный провайдер каталога журналов не установлен")
)

type RegistryInterface interface {
	Register(provider JournalProvider) error
	Get(name string) (JournalProvider, error)
	SetActive(name string) error
	GetActive() (JournalProvider, error)
}

// Registry - потокобезопасный набор провайдеров каталога журналов с одним активным.
type Registry struct {
	providers map[string]JournalProvider
	active    string
	mu        sync.RWMutex
}

func NewRegistry() RegistryInterface {
	return &Registry{
		providers: make(map[string]JournalProvider),
	}
}

func (r *Registry) Register(provider JournalProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("провайдер с именем '%s' уже зарегистрирован", name)
	}

	r.providers[name] = provider
	return nil
}

func (r *Registry) Get(name string) (JournalProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrProviderNotFound, name)
	}
	return provider, nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("невозможно сделать активным '%s': %w", name, ErrProviderNotFound)
	}

	r.active = name
	return nil
}

func (r *Registry) GetActive() (JournalProvider, error) {
	r.mu.RLock()
	activeName := r.active
	r.mu.RUnlock()

	if activeName == "" {
		return nil, ErrNoActiveProvider
	}

	return r.Get(activeName)
}
