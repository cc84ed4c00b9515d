package ai

import (
	"context"
	"crypto/md5"
	"fmt"
	"math"
	"strings"
)

const defaultSimpleDim = 384

type simpleConfig struct {
	Dim int `json:"dim"`
}

// simpleEmbedProvider derives embeddings from md5 digests so that retrieval
// keeps working without any external model. The same text always maps to the
// same unit-length vector.
type simpleEmbedProvider struct {
	dim int
}

func (p *simpleEmbedProvider) Name() string {
	return "simple"
}

func (p *simpleEmbedProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	return p.encode(text), nil
}

func (p *simpleEmbedProvider) EmbedBatch(ctx context.Context, model string, texts []string, taskType string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vecs = append(vecs, p.encode(text))
	}
	return vecs, nil
}

func (p *simpleEmbedProvider) Dimensions() int {
	return p.dim
}

// encode hashes "<text>_<i>" per dimension, maps the digest onto [-1, 1) and
// L2-normalizes the result. Text is trimmed and lowercased first so casing
// and padding do not change the vector.
func (p *simpleEmbedProvider) encode(text string) []float32 {
	text = strings.ToLower(strings.TrimSpace(text))
	features := make([]float64, p.dim)
	var sum float64
	for i := 0; i < p.dim; i++ {
		seed := fmt.Sprintf("%s_%d", text, i)
		v := float64(digestBucket(seed))/5000.0 - 1.0
		features[i] = v
		sum += v * v
	}
	norm := math.Sqrt(sum)
	vec := make([]float32, p.dim)
	for i, v := range features {
		if norm > 0 {
			v /= norm
		}
		vec[i] = float32(v)
	}
	return vec
}

// digestBucket reduces an md5 digest modulo 10000, treating the 16 bytes as
// one big-endian integer.
func digestBucket(seed string) int {
	digest := md5.Sum([]byte(seed))
	rem := 0
	for _, b := range digest {
		rem = (rem*256 + int(b)) % 10000
	}
	return rem
}

func createSimpleEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &simpleConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	dim := cfg.Dim
	if dim <= 0 {
		dim = defaultSimpleDim
	}
	return &simpleEmbedProvider{dim: dim}, nil
}

func init() {
	RegisterEmbed("simple", createSimpleEmbedFactory)
}
