package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupLogger_Levels(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	testCases := []struct {
		in   string
		want log.Level
	}{
		{in: "debug", want: log.DebugLevel},
		{in: "WARN", want: log.WarnLevel},
		{in: "chatty", want: log.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			setupLogger(tc.in)
			if got := log.GetLevel(); got != tc.want {
				t.Fatalf("expected level %s, got %s", tc.want, got)
			}
		})
	}
}
