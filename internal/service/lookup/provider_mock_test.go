package lookup

import (
	"context"
	"sync"

	"github.com/heartmarshall/wordbook/internal/domain"
)

var _ entryProvider = &entryProviderMock{}

type entryProviderMock struct {
	FetchEntriesFunc func(ctx context.Context, word string) ([]domain.LookupResult, error)

	calls struct {
		FetchEntries []struct {
			Ctx  context.Context
			Word string
		}
	}
	lockFetchEntries sync.RWMutex
}

func (mock *entryProviderMock) FetchEntries(ctx context.Context, word string) ([]domain.LookupResult, error) {
	if mock.FetchEntriesFunc == nil {
		panic("entryProviderMock.FetchEntriesFunc: method is nil but entryProvider.FetchEntries was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Word string
	}{Ctx: ctx, Word: word}
	mock.lockFetchEntries.Lock()
	mock.calls.FetchEntries = append(mock.calls.FetchEntries, callInfo)
	mock.lockFetchEntries.Unlock()
	return mock.FetchEntriesFunc(ctx, word)
}

func (mock *entryProviderMock) FetchEntriesCalls() []struct {
	Ctx  context.Context
	Word string
} {
	mock.lockFetchEntries.RLock()
	calls := mock.calls.FetchEntries
	mock.lockFetchEntries.RUnlock()
	return calls
}
