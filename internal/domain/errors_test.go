package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsInvalidArgument(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "reason required",
			err:  ErrReasonRequired,
			want: true,
		},
		{
			name: "index out of range",
			err:  ErrItemIndexOutOfRange,
			want: true,
		},
		{
			name: "wrapped terminal order",
			err:  fmt.Errorf("reject item: %w", ErrOrderTerminal),
			want: true,
		},
		{
			name: "other error",
			err:  ErrOrderNotFound,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsInvalidArgument(tt.err)
			if got != tt.want {
				t.Errorf("IsInvalidArgument() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not found", err: ErrOrderNotFound, want: true},
		{name: "joined", err: errors.Join(ErrOrderNotFound, errors.New("extra context")), want: true},
		{name: "invalid argument", err: ErrReasonRequired, want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFound(tc.err); got != tc.want {
				t.Fatalf("IsNotFound()=%v, want %v", got, tc.want)
			}
		})
	}
}
