package mockfeed

import (
	"context"
	"time"

	"github.com/pedrowallacee/palpitarena-v2/feed"
	"github.com/stretchr/testify/mock"
)

type Provider struct {
	mock.Mock
}

func (p *Provider) FetchResultsForDate(ctx context.Context, date time.Time) ([]feed.MatchResult, error) {
	args := p.Called(ctx, date)

	var res []feed.MatchResult
	if args.Get(0) != nil {
		res = args.Get(0).([]feed.MatchResult)
	}

	return res, args.Error(1)
}

func (p *Provider) FetchLiveMatches(ctx context.Context) ([]feed.MatchResult, error) {
	args := p.Called(ctx)

	var res []feed.MatchResult
	if args.Get(0) != nil {
		res = args.Get(0).([]feed.MatchResult)
	}

	return res, args.Error(1)
}

var _ feed.Provider = (*Provider)(nil)
