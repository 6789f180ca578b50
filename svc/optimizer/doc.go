// Package optimizer rewrites free-text prompts through an OpenAI-compatible
// chat completion endpoint (DeepSeek by default).
//
// Four strategies are available: comprehensive, clarity, specificity and
// creativity. Each sends a fixed system prompt and asks the model for a JSON
// document with the optimized prompt, scores, an analysis and alternatives.
//
// Service.Optimize never surfaces provider failures. When the provider is
// not configured, unreachable, slow or returns something that does not
// parse, a deterministic mock result is returned with Degraded set:
//
//	client, err := optimizer.NewChatClient(cfg)
//	if err != nil {
//		client = nil // no API key, mock results only
//	}
//	svc := optimizer.NewService(client, optimizer.WithLogger(log))
//	res, err := svc.Optimize(ctx, "write a blog post about go", "clarity")
package optimizer
