// Package keycycle rotates among several credentials ("keys") for a
// rate-limited external API, so callers never track per-key usage or
// failures themselves.
//
// # Key Concepts
//
//   - [Registry] maps pool names to pools. A pool is created from its key
//     source the first time its name is used.
//   - [Pool] holds a fixed, ordered set of keys and a rotation cursor.
//     [Pool.Select] hands out keys round-robin, skipping keys that were
//     marked failed or that reached the pool's usage ceiling.
//   - [Config] is a pool's policy: an optional usage ceiling per key and an
//     optional reset interval after which every key becomes usable again.
//   - [source.Source] supplies raw key material. By default keys are read
//     from environment variables named ENV_<POOL>_KEY1, ENV_<POOL>_KEY2, ...
//
// Pool names are case-insensitive: "OpenAI" and "openai" name the same pool
// and read the same ENV_OPENAI_KEY<n> variables.
//
// # Quick Start
//
//	registry := keycycle.New()
//
//	key, err := registry.GetKey(ctx, "openai")
//	if err != nil {
//		return err
//	}
//	// ... call the API with key; on a 429:
//	registry.MarkKeyAsFailed("openai", key)
//
//	// Or let an http.Client do the rotation.
//	client := &http.Client{
//		Transport: registry.Transport("openai", nil),
//	}
//
// See the [Registry] documentation for the full API.
package keycycle
