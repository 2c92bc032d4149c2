package ctechpay

import (
	"bytes"
	"net/url"
	"sync"
)

var (
	// bodyBufferPool pools buffers for multipart order bodies
	bodyBufferPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 1024))
		},
	}

	// formDataPool pools url.Values for the form-encoded fallback
	formDataPool = sync.Pool{
		New: func() interface{} {
			return make(url.Values, 2)
		},
	}
)

func getBodyBuffer() *bytes.Buffer {
	buf := bodyBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBodyBuffer clears the buffer before pooling it; bodies contain the API token
func putBodyBuffer(buf *bytes.Buffer) {
	b := buf.Bytes()
	for i := range b {
		b[i] = 0
	}
	buf.Reset()
	bodyBufferPool.Put(buf)
}

func getFormData() url.Values {
	formData := formDataPool.Get().(url.Values)
	for k := range formData {
		delete(formData, k)
	}
	return formData
}

func putFormData(formData url.Values) {
	for k := range formData {
		delete(formData, k)
	}
	formDataPool.Put(formData)
}
