package storage

import "fmt"

// Key layout is part of the external contract and must stay stable:
//
//	uploads/{ownerId}/{videoId}.{ext}           source uploads
//	outputs/{videoId}/{outputId}.mp4            finished dubs
//	work/{videoId}/{outputId}/{stage}/{name}    intermediate artifacts
//
// Everything under the work prefix is purgeable once an output reaches
// published, failed or cancelled.

// UploadKey is the destination of a client's source video upload.
func UploadKey(ownerID, videoID, ext string) string {
	return fmt.Sprintf("uploads/%s/%s.%s", ownerID, videoID, ext)
}

// OutputKey is the final location of one language's finished dub.
func OutputKey(videoID, outputID string) string {
	return fmt.Sprintf("outputs/%s/%s.mp4", videoID, outputID)
}

// WorkKey addresses one intermediate artifact of one output's stage.
func WorkKey(videoID, outputID, stage, name string) string {
	return fmt.Sprintf("work/%s/%s/%s/%s", videoID, outputID, stage, name)
}

// WorkPrefix scopes all working storage of a single output.
func WorkPrefix(videoID, outputID string) string {
	return fmt.Sprintf("work/%s/%s/", videoID, outputID)
}
