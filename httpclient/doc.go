// Package httpclient is the HTTP client whisperd uses to reach the local
// Whisper runtime. It sends one request per call, streams multipart uploads
// straight from disk, and classifies failures (timeout, unreachable, 503,
// 4xx, 5xx) as *Error so callers can map them onto application errors.
//
//	client, err := httpclient.New(httpclient.Config{BaseURL: "http://localhost:8387"})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/transcribe",
//	    Form: &httpclient.MultipartBody{
//	        Fields: map[string]string{"task": "translate"},
//	        File:   httpclient.FilePart{FieldName: "audio", FileName: "clip.wav", Reader: f},
//	    },
//	})
package httpclient
