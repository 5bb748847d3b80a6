package utils

import (
	"errors"
	"testing"
)

func TestParseSkipLimit(t *testing.T) {
	limits := PageLimits{DefaultLimit: 100, MaxLimit: 500}

	tests := []struct {
		name      string
		skip      string
		limit     string
		wantSkip  int
		wantLimit int
		wantErr   error
	}{
		{name: "defaults", wantSkip: 0, wantLimit: 100},
		{name: "explicit", skip: "10", limit: "20", wantSkip: 10, wantLimit: 20},
		{name: "clamped", limit: "100000", wantLimit: 500},
		{name: "negative_skip", skip: "-1", wantErr: ErrInvalidSkip},
		{name: "text_skip", skip: "ten", wantErr: ErrInvalidSkip},
		{name: "zero_limit", limit: "0", wantErr: ErrInvalidLimit},
		{name: "text_limit", limit: "lots", wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, limit, err := ParseSkipLimit(tt.skip, tt.limit, limits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Fatalf("got (%d, %d), want (%d, %d)", skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("e42b6ed3-0af3-49f0-9dcd-37aa7ed8c980") {
		t.Fatalf("valid uuid rejected")
	}
	if IsUUID("not-a-uuid") || IsUUID("") {
		t.Fatalf("invalid uuid accepted")
	}
}
