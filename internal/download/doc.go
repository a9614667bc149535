// Package download provides the batch orchestration logic: searching a
// CONTENTdm collection, resolving each record to a playable asset,
// downloading it to its planned path, and tagging it.
//
// # Manager
//
// The Manager drives the whole pipeline sequentially, one record at a
// time, with a fixed delay between records:
//
//	policy, err := audio.ParsePolicy(settings.RetagPolicy)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	manager := download.NewManager(settings, policy, download.Options{}, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "berea", "fiddle"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := manager.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	stats := manager.Stats()
//
// Per-record failures (unresolvable identity, transport errors, no
// playable media, tagging failures) are reported through progress
// events and counted; they never halt the batch.
package download
