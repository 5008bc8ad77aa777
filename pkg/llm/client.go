package llm

import (
	"context"
	"log"

	"github.com/mathforge-ai/mathforge/pkg/cache"
	"github.com/mathforge-ai/mathforge/pkg/costs"
	"github.com/mathforge-ai/mathforge/pkg/models"
)

// Client is the composed model-invocation entry point used by the pipeline:
// it consults the response cache before invoking, and charges the cost
// tracker once per real invocation. Cache hits are never re-charged.
type Client struct {
	invoker Invoker
	cache   *cache.Cache  // nil disables caching
	tracker *costs.Tracker // nil disables cost tracking
}

// NewClient composes an invoker (typically retry-wrapped) with an optional
// cache and tracker.
func NewClient(invoker Invoker, c *cache.Cache, t *costs.Tracker) *Client {
	return &Client{invoker: invoker, cache: c, tracker: t}
}

// Call invokes the model described by req, serving identical requests from
// the cache when possible. Cache and tracker failures degrade to warnings
// and never fail the call.
func (c *Client) Call(ctx context.Context, req models.InvokeRequest) (models.InvokeResponse, error) {
	if c.cache != nil {
		if resp, ok := c.cacheGet(req); ok {
			return resp, nil
		}
	}

	resp, err := c.invoker.Invoke(ctx, req)
	if err != nil {
		return models.InvokeResponse{}, err
	}

	if c.tracker != nil {
		c.trackUsage(req, resp)
	}
	if c.cache != nil {
		c.cachePut(req, resp)
	}
	return resp, nil
}

func (c *Client) cacheGet(req models.InvokeRequest) (resp models.InvokeResponse, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("llm: cache lookup failed: %v", r)
			ok = false
		}
	}()
	return c.cache.Get(req)
}

func (c *Client) cachePut(req models.InvokeRequest, resp models.InvokeResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("llm: cache store failed: %v", r)
		}
	}()
	c.cache.Put(req, resp)
}

func (c *Client) trackUsage(req models.InvokeRequest, resp models.InvokeResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("llm: cost tracking failed: %v", r)
		}
	}()
	c.tracker.Log(costs.Usage{
		Provider:  req.Provider,
		Model:     req.Model,
		TokensIn:  resp.TokensIn,
		TokensOut: resp.TokensOut,
		RawPrompt: req.Prompt,
		RawOutput: resp.Text,
	})
}
