package instance

import "context"

// Task names for capability operations. Each typed method below delegates
// to exactly one of these through the runner's invocation primitive.
const (
	taskConnect                = "connect"
	taskVerifyConnection       = "verifyConnection"
	taskListEntrypointOptions  = "listEntrypointOptions"
	taskHandleEntrypointUpdate = "handleEntrypointUpdate"
	taskParse                  = "parse"
	taskRead                   = "read"
	taskWrite                  = "write"
	taskDelete                 = "delete"
	taskUpsert                 = "upsert"
	taskQuery                  = "query"
	taskVectorize              = "vectorize"
	taskRerank                 = "rerank"
	taskGetSupportedModels     = "getSupportedModels"
	taskGenerateText           = "generateText"
	taskEnhance                = "enhance"
)

// Provider is the instance for data-source connector plugins. The HTTP
// layer drives connection flows exclusively through this surface.
type Provider struct{ *base }

func (p *Provider) Connect(ctx context.Context, input map[string]any) (any, error) {
	return p.Invoke(ctx, taskConnect, input)
}

func (p *Provider) VerifyConnection(ctx context.Context, input map[string]any) (any, error) {
	return p.Invoke(ctx, taskVerifyConnection, input)
}

func (p *Provider) ListEntrypointOptions(ctx context.Context, input map[string]any) (any, error) {
	return p.Invoke(ctx, taskListEntrypointOptions, input)
}

func (p *Provider) HandleEntrypointUpdate(ctx context.Context, input map[string]any) (any, error) {
	return p.Invoke(ctx, taskHandleEntrypointUpdate, input)
}

// FileParser is the instance for file-parsing plugins.
type FileParser struct{ *base }

func (p *FileParser) Parse(ctx context.Context, input map[string]any) (any, error) {
	return p.Invoke(ctx, taskParse, input)
}

// Storage is the instance for object/file storage backends.
type Storage struct{ *base }

func (s *Storage) Read(ctx context.Context, input map[string]any) (any, error) {
	return s.Invoke(ctx, taskRead, input)
}

func (s *Storage) Write(ctx context.Context, input map[string]any) (any, error) {
	return s.Invoke(ctx, taskWrite, input)
}

func (s *Storage) Delete(ctx context.Context, input map[string]any) (any, error) {
	return s.Invoke(ctx, taskDelete, input)
}

// Database is the instance for vector-database backends consumed by the
// indexing pipeline.
type Database struct{ *base }

func (d *Database) Upsert(ctx context.Context, input map[string]any) (any, error) {
	return d.Invoke(ctx, taskUpsert, input)
}

func (d *Database) Query(ctx context.Context, input map[string]any) (any, error) {
	return d.Invoke(ctx, taskQuery, input)
}

func (d *Database) Delete(ctx context.Context, input map[string]any) (any, error) {
	return d.Invoke(ctx, taskDelete, input)
}

// TextVectorizer embeds text.
type TextVectorizer struct{ *base }

func (v *TextVectorizer) Vectorize(ctx context.Context, input map[string]any) (any, error) {
	return v.Invoke(ctx, taskVectorize, input)
}

// ImageVectorizer embeds images.
type ImageVectorizer struct{ *base }

func (v *ImageVectorizer) Vectorize(ctx context.Context, input map[string]any) (any, error) {
	return v.Invoke(ctx, taskVectorize, input)
}

// MultimodalVectorizer embeds mixed text/image payloads.
type MultimodalVectorizer struct{ *base }

func (v *MultimodalVectorizer) Vectorize(ctx context.Context, input map[string]any) (any, error) {
	return v.Invoke(ctx, taskVectorize, input)
}

// Reranker reorders retrieval candidates.
type Reranker struct{ *base }

func (r *Reranker) Rerank(ctx context.Context, input map[string]any) (any, error) {
	return r.Invoke(ctx, taskRerank, input)
}

// Generative is the instance for generative-model adapters consumed by the
// prompt templating engine.
type Generative struct{ *base }

func (g *Generative) SupportedModels(ctx context.Context) (any, error) {
	return g.Invoke(ctx, taskGetSupportedModels, nil)
}

func (g *Generative) GenerateText(ctx context.Context, input map[string]any) (any, error) {
	return g.Invoke(ctx, taskGenerateText, input)
}

// Enhancer post-processes parsed content before vectorization.
type Enhancer struct{ *base }

func (e *Enhancer) Enhance(ctx context.Context, input map[string]any) (any, error) {
	return e.Invoke(ctx, taskEnhance, input)
}
