package favorites

import (
	"context"
	"sync"
)

var _ BackingStore = &BackingStoreMock{}

type BackingStoreMock struct {
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key string, value string) error

	calls struct {
		Get []struct {
			Ctx context.Context
			Key string
		}
		Set []struct {
			Ctx   context.Context
			Key   string
			Value string
		}
	}
	lockGet sync.RWMutex
	lockSet sync.RWMutex
}

func (mock *BackingStoreMock) Get(ctx context.Context, key string) (string, bool, error) {
	if mock.GetFunc == nil {
		panic("BackingStoreMock.GetFunc: method is nil but BackingStore.Get was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key string
	}{Ctx: ctx, Key: key}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, key)
}

func (mock *BackingStoreMock) GetCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

func (mock *BackingStoreMock) Set(ctx context.Context, key string, value string) error {
	if mock.SetFunc == nil {
		panic("BackingStoreMock.SetFunc: method is nil but BackingStore.Set was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Key   string
		Value string
	}{Ctx: ctx, Key: key, Value: value}
	mock.lockSet.Lock()
	mock.calls.Set = append(mock.calls.Set, callInfo)
	mock.lockSet.Unlock()
	return mock.SetFunc(ctx, key, value)
}

func (mock *BackingStoreMock) SetCalls() []struct {
	Ctx   context.Context
	Key   string
	Value string
} {
	mock.lockSet.RLock()
	calls := mock.calls.Set
	mock.lockSet.RUnlock()
	return calls
}
