package srv

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticPublisher indexes reports into a single Elasticsearch index.
type ElasticPublisher struct {
	es    *elasticsearch.Client
	index string
}

func NewElasticPublisher(addresses []string, index string) (*ElasticPublisher, error) {
	if index == "" {
		return nil, errors.New("elasticsearch: empty index name")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: creating client: %w", err)
	}
	return &ElasticPublisher{es: es, index: index}, nil
}

func (p *ElasticPublisher) Publish(ctx context.Context, r Report) error {
	body, err := r.encode()
	if err != nil {
		return err
	}
	res, err := p.es.Index(p.index, bytes.NewReader(body), p.es.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: indexing report: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch: indexing report: %s", res.Status())
	}
	return nil
}

func (p *ElasticPublisher) Close(context.Context) error {
	return nil
}

func (p *ElasticPublisher) String() string {
	return "elasticsearch index " + p.index
}
