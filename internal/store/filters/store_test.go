package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
	"git.home.luguber.info/inful/vpndesk/internal/store/storetest"
)

func TestStore_FollowsConfigSnapshot(t *testing.T) {
	root := storetest.NewRoot()
	root.Config.SetSnapshot(storeapi.ConfigSnapshot{Filters: storeapi.FilterConfig{MinQuality: 1}})

	s := New(root)
	assert.Equal(t, storeapi.FilterConfig{}, s.Filters().Get())

	s.SetupReactions()
	assert.Equal(t, 1, s.Filters().Get().MinQuality)

	root.Config.SetSnapshot(storeapi.ConfigSnapshot{Filters: storeapi.FilterConfig{MinQuality: 2, Country: "DE"}})
	assert.Equal(t, storeapi.FilterConfig{MinQuality: 2, Country: "DE"}, s.Filters().Get())

	s.DisposeReactions()
	root.Config.SetSnapshot(storeapi.ConfigSnapshot{})
	assert.Equal(t, 2, s.Filters().Get().MinQuality)
}

func TestApply(t *testing.T) {
	ps := []storeapi.Proposal{
		{ProviderID: "cheap", Country: "de", PricePerHour: 0.1, PricePerGiB: 0.05, Quality: 2},
		{ProviderID: "pricey", Country: "DE", PricePerHour: 2, PricePerGiB: 0.05, Quality: 2},
		{ProviderID: "poor", Country: "DE", PricePerHour: 0.1, PricePerGiB: 0.05, Quality: 0},
		{ProviderID: "abroad", Country: "US", PricePerHour: 0.1, PricePerGiB: 0.05, Quality: 2},
	}

	tests := []struct {
		name   string
		filter storeapi.FilterConfig
		want   []string
	}{
		{"zero filter keeps all", storeapi.FilterConfig{}, []string{"cheap", "pricey", "poor", "abroad"}},
		{"price cap", storeapi.FilterConfig{MaxPricePerHour: 1}, []string{"cheap", "poor", "abroad"}},
		{"min quality", storeapi.FilterConfig{MinQuality: 1}, []string{"cheap", "pricey", "abroad"}},
		{"country case-insensitive", storeapi.FilterConfig{Country: "De"}, []string{"cheap", "pricey", "poor"}},
		{"gib cap excludes all", storeapi.FilterConfig{MaxPricePerGiB: 0.01}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, p := range Apply(tt.filter, ps) {
				got = append(got, p.ProviderID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
