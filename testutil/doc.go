// Package testutil provides shared test helpers for whisperd packages.
//
// Component lifecycle with automatic cleanup:
//
//	testutil.Start(t, comp)
//	testutil.RequireHealthy(t, comp)
//
// Audio fixtures:
//
//	path := testutil.WriteMonoWAV(t, dir, "clip.wav",
//	    testutil.Concat(testutil.Speech(300*time.Millisecond), testutil.Quiet(300*time.Millisecond)))
package testutil
