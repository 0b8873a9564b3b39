package execution

import (
	"context"

	copilot "github.com/github/copilot-sdk/go"
)

//go:generate go tool mockgen -source=copilot_client_wrappers.go -destination=copilot_client_wrappers_mocks_test.go -package=execution

// copilotSession is the part of [*copilot.Session] CopilotEngine needs.
type copilotSession interface {
	// On maps to [copilot.Session.On]
	On(handler copilot.SessionEventHandler) func()

	// SendAndWait maps to [copilot.Session.SendAndWait]
	SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error)

	// SessionID returns [copilot.Session.SessionID]
	SessionID() string
}

// copilotClient is the part of [*copilot.Client] CopilotEngine needs.
type copilotClient interface {
	// CreateSession maps to [copilot.Client.CreateSession]
	CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error)

	// Start maps to [copilot.Client.Start]
	Start(ctx context.Context) error

	// Stop maps to [copilot.Client.Stop]
	Stop() error
}

func newCopilotClient(clientOptions *copilot.ClientOptions) copilotClient {
	return &sdkClient{inner: copilot.NewClient(clientOptions)}
}

type sdkClient struct {
	inner *copilot.Client
}

func (c *sdkClient) CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	sess, err := c.inner.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}
	return &sdkSession{inner: sess}, nil
}

func (c *sdkClient) Start(ctx context.Context) error {
	return c.inner.Start(ctx)
}

func (c *sdkClient) Stop() error {
	return c.inner.Stop()
}

// sdkSession exists because [copilot.Session.SessionID] is a field and
// cannot be part of an interface.
type sdkSession struct {
	inner *copilot.Session
}

func (s *sdkSession) On(handler copilot.SessionEventHandler) func() {
	return s.inner.On(handler)
}

func (s *sdkSession) SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error) {
	return s.inner.SendAndWait(ctx, options)
}

func (s *sdkSession) SessionID() string {
	return s.inner.SessionID
}
