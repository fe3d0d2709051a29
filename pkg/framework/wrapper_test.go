package framework

import (
	"context"
	"fmt"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/tripweaver/server/pkg/bootstrap"
	"github.com/tripweaver/server/pkg/testing/mocks"
)

func testService() *bootstrap.Service {
	return &bootstrap.Service{
		Tokens:    &mocks.MockTokenProvider{},
		Identity:  &mocks.MockIdentityLookup{},
		Extractor: &mocks.MockTripExtractor{},
		DB:        &mocks.MockDatabase{},
		Pub:       &mocks.MockPublisher{},
		Config:    &bootstrap.Config{ProjectID: "test-project"},
	}
}

func testEvent(t *testing.T) event.Event {
	t.Helper()
	e := cloudevents.NewEvent()
	e.SetType("com.tripweaver.test")
	e.SetSource("/test")
	if err := e.SetData(cloudevents.ApplicationJSON, map[string]string{}); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestWrapCloudEventInjectsContext(t *testing.T) {
	svc := testService()

	var got *Context
	wrapped := WrapCloudEvent("test-service", svc, func(ctx context.Context, e event.Event, fwCtx *Context) error {
		got = fwCtx
		return nil
	})

	if err := wrapped(context.Background(), testEvent(t)); err != nil {
		t.Fatalf("wrapped handler: %v", err)
	}
	if got == nil {
		t.Fatal("handler never ran")
	}
	if got.Service != svc {
		t.Error("service not injected")
	}
	if got.Logger == nil {
		t.Error("logger not injected")
	}
	if got.ImportID == "" {
		t.Error("import id not assigned")
	}
}

func TestWrapCloudEventDistinctImportIDs(t *testing.T) {
	svc := testService()

	ids := map[string]bool{}
	wrapped := WrapCloudEvent("test-service", svc, func(ctx context.Context, e event.Event, fwCtx *Context) error {
		ids[fwCtx.ImportID] = true
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := wrapped(context.Background(), testEvent(t)); err != nil {
			t.Fatal(err)
		}
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 distinct import ids, got %d", len(ids))
	}
}

func TestWrapCloudEventPropagatesError(t *testing.T) {
	svc := testService()

	wantErr := fmt.Errorf("handler exploded")
	wrapped := WrapCloudEvent("test-service", svc, func(ctx context.Context, e event.Event, fwCtx *Context) error {
		return wantErr
	})

	if err := wrapped(context.Background(), testEvent(t)); err == nil {
		t.Fatal("expected the handler error to propagate")
	}
}
