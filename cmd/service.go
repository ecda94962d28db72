package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/emrgen/docrepo/internal/blob"
	"github.com/emrgen/docrepo/internal/cache"
	"github.com/emrgen/docrepo/internal/compress"
	"github.com/emrgen/docrepo/internal/config"
	"github.com/emrgen/docrepo/internal/doctype"
	"github.com/emrgen/docrepo/internal/queue"
	"github.com/emrgen/docrepo/internal/search"
	"github.com/emrgen/docrepo/internal/service"
	"github.com/emrgen/docrepo/internal/store"
)

// newService wires a DocumentService from the environment. Collaborators
// without configuration fall back to in-memory implementations so the CLI
// works against a bare sqlite file.
func newService() (*service.DocumentService, func()) {
	cnf := config.LoadConfig()
	db := config.GetDb(cnf)

	docStore := store.NewGormStore(db)

	var blobs blob.Store
	if cnf.Minio.Endpoint != "" {
		ms, err := blob.NewMinioStore(cnf.Minio)
		if err != nil {
			logrus.Fatalf("failed to connect to blob store: %v", err)
		}
		blobs = ms
	} else {
		blobs = blob.NewMemoryStore()
	}

	var docCache cache.DocumentCache
	if cnf.RedisAddr != "" {
		docCache = cache.NewRedisDocumentCache(cnf.RedisAddr)
	}

	var events queue.DocumentQueue
	cleanup := func() {}
	if cnf.KafkaBrokers != "" {
		kq, err := queue.NewKafkaQueue(cnf.KafkaBrokers, cnf.KafkaTopic)
		if err != nil {
			logrus.Fatalf("failed to connect to kafka: %v", err)
		}
		events = kq
		cleanup = func() {
			_ = kq.Close()
		}
	}

	docs := service.NewDocumentService(
		compress.ByName(cnf.Compression),
		docStore,
		blobs,
		search.NewMemoryIndexer(),
		doctype.NewStaticRegistry(nil, true),
		docCache,
		events,
	)

	return docs, cleanup
}
