package b64img

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodedSize(t *testing.T) {
	assert.Equal(t, int64(0), DecodedSize(""))
	assert.Equal(t, int64(1), DecodedSize("QQ=="))
	assert.Equal(t, int64(2), DecodedSize("QUI="))
	assert.Equal(t, int64(3), DecodedSize("QUJD"))
	assert.Equal(t, int64(70), DecodedSize(pngB64))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.50 KB", FormatFileSize(1536))
	assert.Equal(t, "2.00 MB", FormatFileSize(2*1024*1024))
}

func TestThroughput(t *testing.T) {
	assert.Zero(t, Metrics{ByteSize: 10}.Throughput())
	assert.InDelta(t, 4.0, Metrics{ByteSize: 2 * 1024 * 1024, ElapsedMs: 500}.Throughput(), 1e-9)
}

func TestFormatNameAndExtension(t *testing.T) {
	assert.Equal(t, "JPEG", FormatName("image/jpeg"))
	assert.Equal(t, "TIFF", FormatName("image/tiff"))
	assert.Equal(t, "IMG", FormatName("bogus"))
	assert.Equal(t, "jpg", Extension("image/jpeg"))
	assert.Equal(t, "ico", Extension("image/x-icon"))
	assert.Equal(t, "png", Extension("image/tiff"))
	assert.Equal(t, "data:image/gif;base64,"+gifB64, DataURL("image/gif", gifB64))
}
