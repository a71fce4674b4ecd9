package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skill-staffing/internal/config"
	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/infrastructure/cache"
	"skill-staffing/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureChannel struct {
	mu    sync.Mutex
	got   []Notification
	err   error
	block chan struct{}
}

func (c *captureChannel) Name() string { return "capture" }

func (c *captureChannel) Deliver(_ context.Context, n Notification) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, n)
	return c.err
}

func (c *captureChannel) items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.got...)
}

type panicChannel struct{}

func (panicChannel) Name() string { return "panic" }
func (panicChannel) Deliver(context.Context, Notification) error {
	panic("channel exploded")
}

func TestService_DeliversToEveryChannel(t *testing.T) {
	a, b := &captureChannel{}, &captureChannel{err: errors.New("smtp down")}
	svc := NewService(config.NotificationConfig{Workers: 2, QueueSize: 8}, nil, nil, a, b)
	svc.Start(context.Background())

	recipient := uuid.New()
	svc.Notify(Notification{RecipientID: recipient, Title: "Assigned", Message: "You were added"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.Stop(ctx)

	require.Len(t, a.items(), 1)
	require.Len(t, b.items(), 1)
	got := a.items()[0]
	assert.Equal(t, recipient, got.RecipientID)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestService_ResolvesSubject(t *testing.T) {
	store := memory.NewStore()
	p := project.Project{ID: uuid.New(), Name: "Apollo"}
	require.NoError(t, store.Repos().Projects().Create(context.Background(), p))

	ch := &captureChannel{}
	svc := NewService(config.NotificationConfig{Workers: 1}, StoreResolvers(store), nil, ch)
	svc.Start(context.Background())
	svc.Notify(Notification{RecipientID: uuid.New(), Title: "t", Subject: ProjectSubject(p.ID)})
	svc.Stop(context.Background())

	require.Len(t, ch.items(), 1)
	assert.Equal(t, "Apollo", ch.items()[0].SubjectLabel)
	assert.Equal(t, "/projects/"+p.ID.String(), ch.items()[0].Link)
}

func TestService_KeepsExplicitLink(t *testing.T) {
	store := memory.NewStore()
	p := project.Project{ID: uuid.New(), Name: "Apollo"}
	require.NoError(t, store.Repos().Projects().Create(context.Background(), p))

	ch := &captureChannel{}
	svc := NewService(config.NotificationConfig{Workers: 1}, StoreResolvers(store), nil, ch)
	svc.Start(context.Background())
	svc.Notify(Notification{RecipientID: uuid.New(), Link: "/resources/1", Subject: ProjectSubject(p.ID)})
	svc.Stop(context.Background())

	require.Len(t, ch.items(), 1)
	assert.Equal(t, "/resources/1", ch.items()[0].Link)
}

func TestService_DropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	ch := &captureChannel{block: block}
	svc := NewService(config.NotificationConfig{Workers: 1, QueueSize: 1}, nil, nil, ch)

	// Not started: the first notification fills the queue.
	svc.Notify(Notification{RecipientID: uuid.New(), Title: "first"})
	svc.Notify(Notification{RecipientID: uuid.New(), Title: "dropped"})

	svc.Start(context.Background())
	close(block)
	svc.Stop(context.Background())

	items := ch.items()
	require.Len(t, items, 1)
	assert.Equal(t, "first", items[0].Title)
}

func TestService_SurvivesChannelPanic(t *testing.T) {
	ch := &captureChannel{}
	svc := NewService(config.NotificationConfig{Workers: 1}, nil, nil, ch, panicChannel{})
	svc.Start(context.Background())
	svc.Notify(Notification{RecipientID: uuid.New(), Title: "a"})
	svc.Notify(Notification{RecipientID: uuid.New(), Title: "b"})
	svc.Stop(context.Background())

	// The single worker keeps running after the first panic.
	assert.Len(t, ch.items(), 2)
}

func TestService_IgnoresMissingRecipient(t *testing.T) {
	ch := &captureChannel{}
	svc := NewService(config.NotificationConfig{Workers: 1}, nil, nil, ch)
	svc.Start(context.Background())
	svc.Notify(Notification{Title: "nobody"})
	svc.Stop(context.Background())
	assert.Empty(t, ch.items())
}

func TestResolvers_UnknownKind(t *testing.T) {
	_, err := Resolvers{}.Resolve(context.Background(), Subject{Kind: "invoice", ID: uuid.New()})
	assert.Error(t, err)
}

func TestInbox_BypassesUnavailableRedis(t *testing.T) {
	inbox := NewInbox(cache.NewRedisWithClient(nil, nil), 10, time.Hour)
	userID := uuid.New()

	require.NoError(t, inbox.Deliver(context.Background(), Notification{RecipientID: userID, Title: "t"}))
	items, err := inbox.List(context.Background(), userID, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
