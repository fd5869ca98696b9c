// Package recorder provides the asynchronous audit writer used by the
// engine.
//
// RecordJob and RecordEvent never block and never return errors. Records
// go through a buffered queue to a single worker; a full queue drops the
// record and logs a warning. Close drains the queue before returning.
//
//	rec := recorder.New(store, &recorder.Config{BufferSize: 1000})
//	defer rec.Close()
package recorder
