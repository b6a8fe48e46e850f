package fakeprovider

import (
	"context"
	"sync"

	"github.com/aikuplatform/authbridge/identity"
)

var _ identity.Provider = (*FakeProvider)(nil)

// FakeProvider is a stub identity provider for coordinator tests. Exchange
// and profile responses (or errors) are injected per test.
type FakeProvider struct {
	lock sync.Mutex

	AuthURLBase string

	Session     *identity.Session
	ExchangeErr error

	Profile         *identity.Profile
	FetchProfileErr error

	ExchangedCodes []string
	FetchedTokens  []string
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{AuthURLBase: "https://provider.example/authorize?state="}
}

func (fp *FakeProvider) AuthCodeURL(state string) string {
	return fp.AuthURLBase + state
}

func (fp *FakeProvider) ExchangeCode(_ context.Context, code string) (*identity.Session, error) {
	fp.lock.Lock()
	defer fp.lock.Unlock()
	fp.ExchangedCodes = append(fp.ExchangedCodes, code)
	if fp.ExchangeErr != nil {
		return nil, fp.ExchangeErr
	}
	session := *fp.Session
	return &session, nil
}

func (fp *FakeProvider) FetchProfile(_ context.Context, accessToken string) (*identity.Profile, error) {
	fp.lock.Lock()
	defer fp.lock.Unlock()
	fp.FetchedTokens = append(fp.FetchedTokens, accessToken)
	if fp.FetchProfileErr != nil {
		return nil, fp.FetchProfileErr
	}
	profile := *fp.Profile
	return &profile, nil
}
