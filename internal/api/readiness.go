package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhilbhutani/examiner/internal/api/handlers"
	"github.com/nikhilbhutani/examiner/internal/llm"
	"github.com/nikhilbhutani/examiner/internal/multimodal/stt"
)

// ProviderChecks reports on the clients the processor was built with, so a
// client that failed to initialize keeps /readyz red even when its key is
// set.
func ProviderChecks(transcriber stt.STTProvider, gw llm.Gateway) map[string]handlers.Pinger {
	return map[string]handlers.Pinger{
		"stt": handlers.PingFunc(func(context.Context) error {
			if transcriber == nil {
				return errors.New("transcriber not configured")
			}
			return nil
		}),
		"llm": handlers.PingFunc(func(context.Context) error {
			if gw == nil || !gw.Configured() {
				name := ""
				if gw != nil {
					name = gw.DefaultProvider()
				}
				return fmt.Errorf("%w: %q", llm.ErrProviderNotConfigured, name)
			}
			return nil
		}),
	}
}
