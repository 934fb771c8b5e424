// Package coursechat provides a high-level façade over the retrieval and
// generation subsystems (vector store, tools, response generator, sessions &
// logging) enabling construction of a course-materials chat service. Most
// applications interact with this package by:
//  1. Creating a Chat via New() (optionally overriding default in-memory services)
//  2. Ingesting courses and chunks through the vector store
//  3. Answering user queries via Query()
//
// The façade delegates generation to flow.Generator while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable session store
// and a structured logger.
package coursechat

import (
	"context"
	"fmt"
	"time"

	"github.com/coursechat/coursechat/core"
	"github.com/coursechat/coursechat/flow"
	"github.com/coursechat/coursechat/logging"
	"github.com/coursechat/coursechat/model"
	"github.com/coursechat/coursechat/observability"
	"github.com/coursechat/coursechat/session"
	"github.com/coursechat/coursechat/store"
	"github.com/coursechat/coursechat/tool"
)

// Options configures the Chat instance.
type Options struct {
	// MaxResults bounds the number of chunks the search tool returns.
	MaxResults int

	// MaxToolRounds bounds tool execution rounds per query.
	MaxToolRounds int

	// HistoryWindow is the number of retained turns per session when the
	// default in-memory session store is used.
	HistoryWindow int

	// SystemPrompt overrides the default model instructions when non-empty.
	SystemPrompt string

	// Sessions overrides the default in-memory session store.
	Sessions session.Store

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *observability.Metrics

	Logger logging.Logger
}

// Chat orchestrates one query end to end: session resolution, history
// retrieval, tool-assisted response generation, source collection and history
// update.
type Chat struct {
	store     *store.VectorStore
	registry  *tool.Registry
	generator *flow.Generator
	sessions  session.Store
	metrics   *observability.Metrics
	logger    logging.Logger
}

// Answer is the result of one query.
type Answer struct {
	// Text is the assistant's reply.
	Text string `json:"answer"`

	// Sources lists the citations surfaced by tool executions during this
	// query, deduplicated in ranked order. Empty when no tool ran.
	Sources []core.Source `json:"sources"`

	// SessionID identifies the conversation; pass it back on the next query
	// to continue the session.
	SessionID string `json:"session_id"`
}

// Analytics summarizes the loaded catalog.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// New constructs a Chat over the given model and vector store, registering
// the content search and course outline tools.
func New(m model.Model, vs *store.VectorStore, optFns ...func(o *Options)) (*Chat, error) {
	opts := Options{
		MaxResults:    5,
		MaxToolRounds: 1,
		HistoryWindow: session.DefaultWindow,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore(opts.HistoryWindow)
	}

	registry := tool.NewRegistry()
	searchTool := tool.NewSearchTool(vs, func(o *tool.SearchOptions) {
		o.MaxResults = opts.MaxResults
	})
	if err := registry.Register(searchTool); err != nil {
		return nil, fmt.Errorf("register search tool: %w", err)
	}
	if err := registry.Register(tool.NewOutlineTool(vs)); err != nil {
		return nil, fmt.Errorf("register outline tool: %w", err)
	}

	generator := flow.NewGenerator(m, registry, func(o *flow.Options) {
		o.MaxToolRounds = opts.MaxToolRounds
		o.SystemPrompt = opts.SystemPrompt
		o.Metrics = opts.Metrics
		o.Logger = opts.Logger
	})

	return &Chat{
		store:     vs,
		registry:  registry,
		generator: generator,
		sessions:  opts.Sessions,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}, nil
}

// Query answers one user question. An empty sessionID starts a new session;
// the returned Answer carries the id to continue it. On success exactly one
// turn is appended to the session history. A fatal failure (model transport,
// vector store unavailable) leaves the history untouched.
func (c *Chat) Query(ctx context.Context, text, sessionID string) (*Answer, error) {
	if sessionID == "" {
		sessionID = c.sessions.Create()
	}

	history, err := c.sessions.History(ctx, sessionID)
	if err != nil {
		c.countQuery("error")
		return nil, fmt.Errorf("load session history: %w", err)
	}

	toolCtx := tool.NewContext(ctx, sessionID, c.logger)

	answer, err := c.generator.Generate(ctx, text, history, toolCtx)
	if err != nil {
		c.countQuery("error")
		return nil, fmt.Errorf("generate response: %w", err)
	}

	sources := toolCtx.Sources()

	turn := core.Turn{
		UserMessage:      text,
		AssistantMessage: answer,
		Sources:          sources,
		CreatedAt:        time.Now().UTC(),
	}
	if err := c.sessions.Append(ctx, sessionID, turn); err != nil {
		// The answer is already produced; losing one history entry degrades
		// context, not correctness.
		c.logger.Warn("failed to append session turn", "session_id", sessionID, "error", err.Error())
	}

	c.countQuery("ok")
	return &Answer{Text: answer, Sources: sources, SessionID: sessionID}, nil
}

// CourseAnalytics reports how many courses are loaded and their titles.
func (c *Chat) CourseAnalytics() Analytics {
	return Analytics{
		TotalCourses: c.store.CourseCount(),
		CourseTitles: c.store.CourseTitles(),
	}
}

// Store exposes the underlying vector store for ingestion.
func (c *Chat) Store() *store.VectorStore { return c.store }

func (c *Chat) countQuery(outcome string) {
	if c.metrics != nil {
		c.metrics.CountQuery(outcome)
	}
}
