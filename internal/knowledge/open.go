package knowledge

import (
	"fmt"
	"log/slog"
)

// Open returns the configured source: the remote service at baseURL, the
// corpus file at corpusPath, or nil when neither is set.
func Open(baseURL, apiKey, corpusPath string, log *slog.Logger) (Source, error) {
	switch {
	case baseURL != "" && corpusPath != "":
		return nil, fmt.Errorf("knowledge url and corpus file are mutually exclusive")
	case baseURL != "":
		return NewClient(baseURL, apiKey, log), nil
	case corpusPath != "":
		docs, err := LoadCorpus(corpusPath)
		if err != nil {
			return nil, err
		}
		return NewMemorySource(docs), nil
	}
	return nil, nil
}
