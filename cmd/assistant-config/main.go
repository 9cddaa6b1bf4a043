package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/vapi"
)

const defaultTimeout = 30 * time.Second

// Утилита обслуживания конфигурации голосового ассистента на стороне
// вендора: просмотр текущей конфигурации и обновление webhook-адреса.
func main() {
	var (
		action      string
		assistantID string
		serverURL   string
		firstMsg    string
		name        string
	)

	flag.StringVar(&action, "action", "show", "action: show|update")
	flag.StringVar(&assistantID, "assistant", "", "assistant id (fallback: VAPI_ASSISTANT_ID)")
	flag.StringVar(&serverURL, "server-url", "", "webhook url to set on update")
	flag.StringVar(&firstMsg, "first-message", "", "greeting to set on update")
	flag.StringVar(&name, "name", "", "assistant name to set on update")
	flag.Parse()

	apiKey := strings.TrimSpace(os.Getenv("VAPI_API_KEY"))
	if apiKey == "" {
		fail("VAPI_API_KEY is required")
	}
	if assistantID == "" {
		assistantID = strings.TrimSpace(os.Getenv("VAPI_ASSISTANT_ID"))
	}
	if assistantID == "" {
		fail("VAPI_ASSISTANT_ID (or -assistant) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client := vapi.NewClient(apiKey)

	switch strings.ToLower(strings.TrimSpace(action)) {
	case "show":
		assistant, err := client.GetAssistant(ctx, assistantID)
		if err != nil {
			fail("get assistant failed: %v", err)
		}
		printAssistant(assistant)
	case "update":
		patch := vapi.AssistantPatch{
			Name:         name,
			FirstMessage: firstMsg,
			ServerURL:    serverURL,
		}
		if patch.Name == "" && patch.FirstMessage == "" && patch.ServerURL == "" {
			fail("update requires at least one of -name, -first-message, -server-url")
		}
		assistant, err := client.PatchAssistant(ctx, assistantID, patch)
		if err != nil {
			fail("patch assistant failed: %v", err)
		}
		fmt.Println("assistant updated")
		printAssistant(assistant)
	default:
		fail("unsupported action: %s (use show|update)", action)
	}
}

func printAssistant(assistant vapi.Assistant) {
	encoded, err := json.MarshalIndent(assistant, "", "  ")
	if err != nil {
		fail("encode assistant: %v", err)
	}
	fmt.Println(string(encoded))
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
