package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"painpoint-advisor/internal/model"
	"painpoint-advisor/internal/repository"
	"painpoint-advisor/pkg/kafka"
	"painpoint-advisor/pkg/llm"
	"painpoint-advisor/pkg/search"
)

type chatCall struct {
	messages []llm.Message
	tools    []llm.Tool
}

// fakeClient 按顺序返回预设的非流式结果，并记录每次调用。
type fakeClient struct {
	name       string
	configured bool

	mu          sync.Mutex
	responses   []*llm.Response
	errs        []error
	calls       []chatCall
	streamCalls []chatCall

	streamFn func(ctx context.Context, onDelta func(string) error) error
}

func newFakeClient(name string) *fakeClient {
	return &fakeClient{name: name, configured: true}
}

func (f *fakeClient) Name() string     { return f.name }
func (f *fakeClient) Configured() bool { return f.configured }

func (f *fakeClient) Chat(_ context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.configured {
		return nil, fmt.Errorf("%s: %w", f.name, llm.ErrNotConfigured)
	}
	i := len(f.calls)
	f.calls = append(f.calls, chatCall{messages: messages, tools: tools})
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, &llm.ProviderError{Provider: f.name, StatusCode: 500}
}

func (f *fakeClient) StreamChat(ctx context.Context, messages []llm.Message, tools []llm.Tool, onDelta func(string) error) error {
	f.mu.Lock()
	if !f.configured {
		f.mu.Unlock()
		return fmt.Errorf("%s: %w", f.name, llm.ErrNotConfigured)
	}
	f.streamCalls = append(f.streamCalls, chatCall{messages: messages, tools: tools})
	fn := f.streamFn
	f.mu.Unlock()
	if fn == nil {
		return &llm.ProviderError{Provider: f.name, StatusCode: 502}
	}
	return fn(ctx, onDelta)
}

func (f *fakeClient) chatCalls() []chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chatCall(nil), f.calls...)
}

func streamFragments(fragments ...string) func(context.Context, func(string) error) error {
	return func(_ context.Context, onDelta func(string) error) error {
		for _, fr := range fragments {
			if err := onDelta(fr); err != nil {
				return err
			}
		}
		return nil
	}
}

type fakeSearch struct {
	resp    *search.Response
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string) (*search.Response, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// memRepository 是内存中的 ConversationRepository。
type memRepository struct {
	mu            sync.Mutex
	conversations map[string]*model.Conversation
	messages      map[string][]model.Message
	appendErr     error
	appends       int
}

func newMemRepository() *memRepository {
	return &memRepository{
		conversations: make(map[string]*model.Conversation),
		messages:      make(map[string][]model.Message),
	}
}

func (r *memRepository) Create(_ context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	conv.CreatedAt, conv.UpdatedAt = now, now
	c := *conv
	r.conversations[conv.ID] = &c
	return nil
}

func (r *memRepository) FindByID(_ context.Context, id string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	out := *c
	return &out, nil
}

func (r *memRepository) FindWithMessages(ctx context.Context, id string) (*model.Conversation, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Messages, _ = r.ListMessages(ctx, id)
	return c, nil
}

func (r *memRepository) ListRecent(_ context.Context, limit int) ([]model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Conversation
	for _, c := range r.conversations {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepository) ListMessages(_ context.Context, id string) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Message(nil), r.messages[id]...), nil
}

func (r *memRepository) AppendMessages(_ context.Context, id string, msgs []*model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	c, ok := r.conversations[id]
	if !ok {
		return errors.New("conversation does not exist")
	}
	r.appends++
	for _, m := range msgs {
		m.ConversationID = id
		m.Seq = len(r.messages[id]) + 1
		m.ID = fmt.Sprintf("%s-%d", id, m.Seq)
		r.messages[id] = append(r.messages[id], *m)
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *memRepository) counts() (conversations, messages int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		messages += len(m)
	}
	return len(r.conversations), messages
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.TurnEvent
}

func (p *fakePublisher) PublishTurn(_ context.Context, e kafka.TurnEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// recordingWriter 记录写给客户端的事件。failAfter > 0 时第 failAfter 次之后的写入失败。
type recordingWriter struct {
	mu        sync.Mutex
	events    []any
	done      int
	failAfter int
	onEvent   func(n int)
}

func (w *recordingWriter) WriteEvent(payload any) error {
	w.mu.Lock()
	if w.failAfter > 0 && len(w.events) >= w.failAfter {
		w.mu.Unlock()
		return errors.New("broken pipe")
	}
	w.events = append(w.events, payload)
	n := len(w.events)
	cb := w.onEvent
	w.mu.Unlock()
	if cb != nil {
		cb(n)
	}
	return nil
}

func (w *recordingWriter) WriteDone() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.done++
	return nil
}

func (w *recordingWriter) content() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var s string
	for _, e := range w.events {
		if c, ok := e.(ContentEvent); ok {
			s += c.Content
		}
	}
	return s
}

func (w *recordingWriter) last() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.events) == 0 {
		return nil
	}
	return w.events[len(w.events)-1]
}

type testEnv struct {
	primary   *fakeClient
	fallback  *fakeClient
	search    *fakeSearch
	repo      *memRepository
	publisher *fakePublisher
	router    *ProviderRouter
	chat      ChatService
	convs     ConversationService
}

func newTestEnv(offline bool) *testEnv {
	env := &testEnv{
		primary:   newFakeClient("deepseek"),
		fallback:  newFakeClient("together"),
		search:    &fakeSearch{resp: &search.Response{}},
		repo:      newMemRepository(),
		publisher: &fakePublisher{},
	}
	env.router = NewProviderRouter(env.primary, env.fallback, NewToolExecutor(NewWebSearchTool(env.search)))
	local := NewLocalResponder()
	relay := NewStreamRelay(env.router, local, offline, 0)
	env.convs = NewConversationService(env.repo, repository.NewLocalLocker(), 50, 20)
	env.chat = NewChatService(env.router, relay, local, env.convs, env.publisher, offline)
	return env
}

func (e *testEnv) unconfigure() {
	e.primary.configured = false
	e.fallback.configured = false
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Type: "function", Function: llm.FunctionCall{Name: name, Arguments: args}}
}
