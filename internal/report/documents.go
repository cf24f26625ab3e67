package report

import (
	"time"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// runDoc is the JSON and YAML shape of a run.
type runDoc struct {
	ID         string         `json:"id" yaml:"id"`
	Root       string         `json:"root" yaml:"root"`
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at" yaml:"finished_at"`
	Counts     map[string]int `json:"counts,omitempty" yaml:"counts,omitempty"`
	Nodes      []nodeDoc      `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Linkages   []linkageDoc   `json:"linkages,omitempty" yaml:"linkages,omitempty"`
}

type nodeDoc struct {
	Name         string `json:"name" yaml:"name"`
	Parent       string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Depth        int    `json:"depth" yaml:"depth"`
	Status       string `json:"status" yaml:"status"`
	Reason       string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Location     string `json:"location" yaml:"location"`
	Entities     int    `json:"entities,omitempty" yaml:"entities,omitempty"`
	DocumentType string `json:"document_type,omitempty" yaml:"document_type,omitempty"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"`
}

type linkageDoc struct {
	Master             string `json:"master" yaml:"master"`
	Detail             string `json:"detail" yaml:"detail"`
	RepresentationName string `json:"representation_name" yaml:"representation_name"`
	ProductName        string `json:"product_name" yaml:"product_name"`
	ProductID          string `json:"product_id" yaml:"product_id"`
}

func toRunDoc(run *domain.Run, full bool) runDoc {
	doc := runDoc{
		ID:         run.ID,
		Root:       run.Root,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if !full {
		return doc
	}
	if len(run.Nodes) > 0 {
		doc.Counts = make(map[string]int)
		for k, c := range run.Counts() {
			doc.Counts[k.String()] = c
		}
	}
	for _, n := range run.Nodes {
		doc.Nodes = append(doc.Nodes, nodeDoc{
			Name:         n.Name,
			Parent:       n.Parent,
			Depth:        n.Depth,
			Status:       n.Status.String(),
			Reason:       n.Reason,
			Location:     n.Location,
			Entities:     n.Entities,
			DocumentType: n.DocumentType,
			Version:      n.Version,
		})
	}
	doc.Linkages = toLinkageDocs(run.Linkages)
	return doc
}

func toLinkageDocs(records []domain.LinkageRecord) []linkageDoc {
	docs := make([]linkageDoc, 0, len(records))
	for _, l := range records {
		docs = append(docs, linkageDoc{
			Master:             l.Master.String(),
			Detail:             l.Detail.String(),
			RepresentationName: l.Key.RepresentationName,
			ProductName:        l.Key.ProductName,
			ProductID:          l.Key.ProductID,
		})
	}
	return docs
}
