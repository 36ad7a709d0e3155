package imagemounter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// MediaTypeDiskImage is the media type of uploaded disk image payloads.
const MediaTypeDiskImage = "application/x-apple-diskimage"

// Payload is a disk image and its signature, fully loaded in memory.
type Payload struct {
	ImagePath     string
	SignaturePath string
	Image         []byte
	Signature     []byte
}

// LoadPayload reads the image and its signature. Nothing is sent to any
// device, so a missing file is detected before touching the native library.
func LoadPayload(imagePath, signaturePath string) (*Payload, error) {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("could not read image %q: %w: %w", imagePath, ErrPayloadNotFound, err)
	}

	signature, err := readSignature(signaturePath)
	if err != nil {
		return nil, err
	}

	return &Payload{
		ImagePath:     imagePath,
		SignaturePath: signaturePath,
		Image:         image,
		Signature:     signature,
	}, nil
}

func readSignature(path string) ([]byte, error) {
	signature, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read signature %q: %w: %w", path, ErrSignatureNotFound, err)
	}
	return signature, nil
}

// Descriptor describes the image content.
func (p *Payload) Descriptor() ocispec.Descriptor {
	return ocispec.Descriptor{
		MediaType: MediaTypeDiskImage,
		Digest:    digest.FromBytes(p.Image),
		Size:      int64(len(p.Image)),
		Annotations: map[string]string{
			ocispec.AnnotationTitle: filepath.Base(p.ImagePath),
		},
	}
}
