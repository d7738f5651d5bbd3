package mirror

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sidkik/emoji-mirror/pkg/emoji"
	"github.com/sidkik/emoji-mirror/pkg/errors"
)

// fakeSlack implements IndexFetcher and AssetFetcher.
type fakeSlack struct {
	lock sync.Mutex

	index    emoji.RawIndex
	indexErr error
	assets   map[string]string
	failURLs map[string]error

	// If set, FetchIndex signals on entered and then waits for release.
	entered chan struct{}
	release chan struct{}
	panics  bool

	onDownload func(url string)

	indexCalls  int
	downloads   []string
	inFlight    int
	maxInFlight int
}

func (f *fakeSlack) FetchIndex(ctx context.Context) (emoji.RawIndex, error) {
	f.lock.Lock()
	f.indexCalls++
	entered, release := f.entered, f.release
	f.lock.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	if f.panics {
		panic("boom")
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	return f.index, f.indexErr
}

func (f *fakeSlack) FetchAsset(ctx context.Context, url string) (io.ReadCloser, error) {
	f.lock.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.downloads = append(f.downloads, url)
	onDownload := f.onDownload
	f.lock.Unlock()

	if onDownload != nil {
		onDownload(url)
	}

	// Give overlapping downloads a chance to show up.
	time.Sleep(time.Millisecond)

	f.lock.Lock()
	defer f.lock.Unlock()
	f.inFlight--

	if err, ok := f.failURLs[url]; ok {
		return nil, err
	}
	contents, ok := f.assets[url]
	if !ok {
		return nil, errors.RemoteError{Op: "download", StatusCode: 404, Reason: "404 Not Found"}
	}
	return io.NopCloser(strings.NewReader(contents)), nil
}

func (f *fakeSlack) indexCallCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.indexCalls
}
