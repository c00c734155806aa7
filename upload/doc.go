// Package upload buffers an incoming audio payload to a file inside a
// request-scoped directory.
//
// The payload is read in fixed-size chunks so memory stays bounded no matter
// how large the clip is. The declared filename is reduced to a bare basename
// before it touches the filesystem; it is never trusted as a path.
//
//	path, err := upload.Receive(ctx, part, header.Filename, dir, upload.DefaultChunkSize)
//
// Every failure is returned as an UPLOAD_FAILED AppError.
package upload
