package main

import (
	"testing"

	"github.com/benbeisheim/chess-backend/internal/engine"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		from    string
		to      string
		promo   engine.PieceType
		wantErr bool
	}{
		{in: "e2e4", from: "e2", to: "e4"},
		{in: "e7e8q", from: "e7", to: "e8", promo: engine.Queen},
		{in: "a2a1n", from: "a2", to: "a1", promo: engine.Knight},
		{in: "e7e8k", wantErr: true},
		{in: "e2e9", wantErr: true},
		{in: "hello", wantErr: true},
		{in: "e2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMove(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.From.Square() != tt.from || got.To.Square() != tt.to || got.Promotion != tt.promo {
				t.Fatalf("parseMove(%q) = %+v", tt.in, got)
			}
		})
	}
}
