package graph

import (
	waymarkerrors "github.com/waymark/waymark/internal/errors"
	"github.com/waymark/waymark/internal/logger"
	"github.com/waymark/waymark/internal/repository"
)

// ValidateOptions configures Validate's behavior (§4.4).
type ValidateOptions struct {
	// ThrowOnProductionCycles aborts Validate with a CycleError the moment a
	// production cycle is found. Defaults true on the publish path, false
	// on the plan path (callers choose explicitly; there is no hidden
	// path-sensitive default here).
	ThrowOnProductionCycles bool
	LogCycles               bool
	LogOrder                bool
}

// Result is C4's one-shot validation pass output: the built graph, its
// publishing order (dev edges excluded), and both cycle classifications.
// SortError is set when the graph could not be fully ordered (a production
// cycle prevented Kahn's algorithm from visiting every node); downstream
// code must check it before trusting PublishingOrder.
type Result struct {
	Graph            *Graph
	PublishingOrder  []string
	ProductionCycles [][]string
	DevCycles        [][]string
	Warnings         []string
	SortError        error
}

// Validate is the single entry point used by both the plan engine and the
// publisher (§4.4): build the graph, classify its cycles, and attempt a
// topological sort excluding dev edges. It guarantees that downstream code
// never observes a graph with undetected production cycles when it asks
// for a publishing order.
func Validate(repos []*repository.Descriptor, opts ValidateOptions) (*Result, error) {
	g, warnings := Build(repos)
	production, dev := g.DetectCyclesByType()

	if opts.LogCycles {
		for _, cycle := range production {
			logger.Warn("production dependency cycle detected", "members", cycle)
		}
		for _, cycle := range dev {
			logger.Debug("dev dependency cycle detected", "members", cycle)
		}
	}

	if opts.ThrowOnProductionCycles && len(production) > 0 {
		return nil, waymarkerrors.NewCycleError(production[0])
	}

	result := &Result{
		Graph:            g,
		ProductionCycles: production,
		DevCycles:        dev,
		Warnings:         warnings,
	}

	order, err := g.TopologicalSort(true)
	if err != nil {
		result.SortError = err
		return result, nil
	}
	result.PublishingOrder = order

	if opts.LogOrder {
		logger.Info("publishing order resolved", "order", order)
	}

	return result, nil
}
