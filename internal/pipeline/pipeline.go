package pipeline

import (
	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/diagnostics"
)

// PipelineContext is the shared state threaded through the middle-end
// stages. NameCounter is the whole-program monotonic fresh-name source; the
// front end seeds it past every name it generated, so synthesized names can
// never collide with source names.
type PipelineContext struct {
	SourceName  string
	Program     *ast.Program
	Errors      []*diagnostics.Error
	NameCounter int
}

func NewPipelineContext(sourceName string, prog *ast.Program, nameCounter int) *PipelineContext {
	return &PipelineContext{SourceName: sourceName, Program: prog, NameCounter: nameCounter}
}

// HasErrors reports whether any stage recorded a diagnostic.
func (ctx *PipelineContext) HasErrors() bool { return len(ctx.Errors) > 0 }

// Processor is a single middle-end stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. A stage that records errors stops the run:
// continuing would feed an inconsistent program to the next stage, where
// failures are far harder to diagnose.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.HasErrors() {
			break
		}
	}
	return ctx
}
