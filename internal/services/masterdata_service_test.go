package services

import (
	"context"
	"testing"
)

func TestMasterDataService_Labels(t *testing.T) {
	ctx := context.Background()
	md := MasterDataService{Repo: newStore()}
	agency := int64(7)
	missing := int64(70)

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"destination", md.DestinationName(ctx, 2), "Cappadocia"},
		{"dangling destination", md.DestinationName(ctx, 99), UnknownDestination},
		{"hotel", md.HotelName(ctx, 10), "Pera Palace"},
		{"unset hotel", md.HotelName(ctx, 0), UnknownHotel},
		{"agency", md.AgencyName(ctx, &agency), "Blue Travel"},
		{"nil agency", md.AgencyName(ctx, nil), UnknownAgency},
		{"dangling agency", md.AgencyName(ctx, &missing), UnknownAgency},
		{"user", md.UserName(ctx, 3), "Selin"},
		{"dangling user", md.UserName(ctx, 4), UnknownUser},
		{"source", md.SourceName(ctx, 1), "Direct"},
		{"dangling source", md.SourceName(ctx, 9), UnknownSource},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q want %q", tc.name, tc.got, tc.want)
		}
	}

	if _, ok := (MasterDataService{}).Hotel(ctx, 10); ok {
		t.Fatalf("service without repo must not resolve")
	}
}
