package ai

import (
	"context"
	"math"
	"testing"
)

func TestSimpleEmbedderDeterministic(t *testing.T) {
	p := &simpleEmbedProvider{dim: 64}
	ctx := context.Background()

	a, err := p.Embed(ctx, "", "user login flow", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	b, err := p.Embed(ctx, "", "user login flow", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("unexpected dims: %d, %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}

	c, err := p.Embed(ctx, "", "checkout with coupon", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different texts produced identical vectors")
	}
}

func TestSimpleEmbedderUnitNorm(t *testing.T) {
	p := &simpleEmbedProvider{dim: 384}
	vec, err := p.Embed(context.Background(), "", "some document text", "RETRIEVAL_DOCUMENT")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1.0) > 1e-5 {
		t.Fatalf("expected unit norm, got %f", norm)
	}
}

func TestSimpleEmbedderNormalizesInput(t *testing.T) {
	p := &simpleEmbedProvider{dim: 32}
	ctx := context.Background()
	a, _ := p.Embed(ctx, "", "  User Login  ", "")
	b, _ := p.Embed(ctx, "", "user login", "")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("case or padding changed the vector at %d", i)
		}
	}
}

func TestSimpleEmbedderBatchMatchesSingle(t *testing.T) {
	p := &simpleEmbedProvider{dim: 16}
	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma"}
	batch, err := p.EmbedBatch(ctx, "", texts, "RETRIEVAL_DOCUMENT")
	if err != nil {
		t.Fatalf("batch embed failed: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(batch))
	}
	for i, text := range texts {
		single, _ := p.Embed(ctx, "", text, "RETRIEVAL_DOCUMENT")
		for j := range single {
			if single[j] != batch[i][j] {
				t.Fatalf("batch vector %d differs from single encode", i)
			}
		}
	}
}

func TestSimpleEmbedFactoryDefaults(t *testing.T) {
	tests := []struct {
		name string
		args interface{}
		want int
	}{
		{name: "nil args", args: nil, want: 384},
		{name: "explicit dim", args: map[string]interface{}{"dim": 128}, want: 128},
		{name: "zero dim falls back", args: map[string]interface{}{"dim": 0}, want: 384},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewEmbedProvider("simple", tt.args)
			if err != nil {
				t.Fatalf("factory failed: %v", err)
			}
			if p.Dimensions() != tt.want {
				t.Fatalf("Dimensions() = %d, want %d", p.Dimensions(), tt.want)
			}
		})
	}
}
