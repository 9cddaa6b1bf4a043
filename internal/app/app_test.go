package app

import (
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/storage/memory"
)

func TestFanoutTracker_PersistsWithoutSpooler(t *testing.T) {
	tracker := &fanoutTracker{
		gateway: memory.NewGateway(nil, nil),
		logger:  log.WithField("component", "test"),
	}

	// Не должно паниковать и возвращать ошибку наружу.
	tracker.Track(domain.Event{Type: "product_search", ConversationID: "call-1"})
}

func TestApplyLogLevel_InvalidFallsBackToInfo(t *testing.T) {
	applyLogLevel("chatty")
	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}

	applyLogLevel("debug")
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	log.SetLevel(log.InfoLevel)
}
