// Package recorder is the asynchronous run-log sink.
//
// Append stamps the entry with a UUID, a timestamp and a SHA-256 of the input
// text, then places it on a buffered queue. One worker goroutine drains the
// queue into the storage backend, so the backend sees a single writer and
// entries keep their append order. Close drains whatever is still queued.
//
//	rec := recorder.NewRecorder(store, &recorder.Config{AsyncBuffer: 1000})
//	defer rec.Close()
//	eng, _ := engine.New(cfg, detector, engine.WithSink(rec))
package recorder
