// Package storagekey builds object-store keys and derives media formats from
// file names.
package storagekey

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Key prefixes in the documents bucket.
const (
	PrefixDocumentUploads = "uploads/documents/"
	PrefixAudioUploads    = "uploads/audio/"
	PrefixTranscriptions  = "outputs/transcriptions/"
	PrefixSpeech          = "outputs/speech/"
)

const (
	dot                    = "."
	invalidCharReplacement = "_"
	transcriptionJobPrefix = "transcribe-"
	extJSON                = ".json"
	extMP3                 = ".mp3"
)

// ErrUnsupportedMediaFormat is returned when a key has no usable audio extension.
var ErrUnsupportedMediaFormat = errors.New("unsupported media format")

// Media formats accepted by the transcription capability, keyed by extension.
var mediaFormats = map[string]string{
	"amr":  "amr",
	"flac": "flac",
	"m4a":  "m4a",
	"mp3":  "mp3",
	"mp4":  "mp4",
	"ogg":  "ogg",
	"webm": "webm",
	"wav":  "wav",
}

var filenameReplacer = strings.NewReplacer(
	"<", invalidCharReplacement,
	">", invalidCharReplacement,
	":", invalidCharReplacement,
	"\"", invalidCharReplacement,
	"/", invalidCharReplacement,
	"\\", invalidCharReplacement,
	"|", invalidCharReplacement,
	"?", invalidCharReplacement,
	"*", invalidCharReplacement,
)

// SanitizeFilename replaces characters that would escape a key prefix or are
// invalid in most filesystems.
func SanitizeFilename(filename string) string {
	return filenameReplacer.Replace(filename)
}

// GetFileExtension returns the lower-cased extension of name without the leading dot.
func GetFileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), dot))
}

// MediaFormat derives the transcription media format from a key's extension.
func MediaFormat(key string) (string, error) {
	format, ok := mediaFormats[GetFileExtension(key)]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedMediaFormat, key)
	}

	return format, nil
}

// UploadKey returns a collision-free key for fileName under prefix.
func UploadKey(prefix, fileName string) string {
	return prefix + uuid.NewString() + "-" + SanitizeFilename(fileName)
}

// TranscriptionJobName returns a fresh transcription job name.
func TranscriptionJobName() string {
	return transcriptionJobPrefix + uuid.NewString()
}

// TranscriptionOutputKey returns the key the transcript of jobName is written to.
func TranscriptionOutputKey(jobName string) string {
	return PrefixTranscriptions + jobName + extJSON
}

// SpeechKey returns a fresh key for a synthesized MP3.
func SpeechKey() string {
	return PrefixSpeech + uuid.NewString() + extMP3
}

// S3URI returns the s3:// URI of an object.
func S3URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
