package browser

import (
	"strings"
	"testing"
)

const fixtureHTML = `
<html><body>
<ytd-video-renderer>
  <img src="https://i.ytimg.com/vi/dQw4w9WgXcQ/hq720.jpg">
  <a id="video-title" title="Standard Video" href="/watch?v=dQw4w9WgXcQ&pp=xyz">Standard Video</a>
  <ytd-channel-name><a href="/@somechannel">Some Channel</a></ytd-channel-name>
  <div id="metadata-line">
    <span>1.2M views</span>
    <span>3 days ago</span>
  </div>
  <span class="ytd-thumbnail-overlay-time-status-renderer">10:24</span>
</ytd-video-renderer>
<ytd-reel-item-renderer>
  <img src="https://i.ytimg.com/vi/abcdefghij1/frame0.jpg">
  <a class="reel-item-endpoint" href="/shorts/abcdefghij1">
    <span>Quick Short</span>
  </a>
  <div id="channel-name"><a href="/channel/UCshorts123">Shorts Channel</a></div>
  <div class="reel-item-metadata"><span>500K views</span></div>
</ytd-reel-item-renderer>
<ytd-video-renderer>
  <a id="video-title" title="Broken Item" href="/playlist?list=PLx">Broken Item</a>
</ytd-video-renderer>
<ytd-video-renderer>
  <a id="video-title" title="Another" href="/watch?v=zyxwvutsrq9">Another</a>
  <ytd-channel-name><a href="/user/legacyname">Legacy</a></ytd-channel-name>
  <div id="metadata-line"><span>743 views</span><span>1 hour ago</span></div>
</ytd-video-renderer>
</body></html>`

func TestExtract(t *testing.T) {
	raws, err := extract(fixtureHTML, 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// The playlist-link item has no video ID and must be skipped.
	if len(raws) != 3 {
		t.Fatalf("got %d items, want 3", len(raws))
	}

	v := raws[0]
	if v.ID != "dQw4w9WgXcQ" {
		t.Errorf("ID = %q", v.ID)
	}
	if v.Title != "Standard Video" {
		t.Errorf("Title = %q", v.Title)
	}
	if v.ChannelID != "somechannel" || v.ChannelTitle != "Some Channel" {
		t.Errorf("channel = %q / %q", v.ChannelID, v.ChannelTitle)
	}
	if v.ViewCountText != "1.2M views" || v.PublishedText != "3 days ago" {
		t.Errorf("metadata = %q / %q", v.ViewCountText, v.PublishedText)
	}
	if v.DurationText != "10:24" {
		t.Errorf("DurationText = %q", v.DurationText)
	}
	if v.IsShorts {
		t.Error("standard renderer classified as shorts")
	}

	short := raws[1]
	if short.ID != "abcdefghij1" {
		t.Errorf("shorts ID = %q", short.ID)
	}
	if !short.IsShorts {
		t.Error("reel renderer not classified as shorts")
	}
	if short.Title != "Quick Short" {
		t.Errorf("shorts title fallback = %q", short.Title)
	}
	if short.ChannelID != "UCshorts123" {
		t.Errorf("shorts ChannelID = %q", short.ChannelID)
	}
	if short.ViewCountText != "500K views" {
		t.Errorf("shorts views = %q", short.ViewCountText)
	}

	if raws[2].ChannelID != "legacyname" {
		t.Errorf("user-path channel ID = %q", raws[2].ChannelID)
	}
}

func TestExtractMaxResults(t *testing.T) {
	raws, err := extract(fixtureHTML, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 {
		t.Errorf("got %d items, want capped at 1", len(raws))
	}
}

func TestExtractEmptyPage(t *testing.T) {
	raws, err := extract("<html><body><p>No results</p></body></html>", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 0 {
		t.Errorf("got %d items from empty page", len(raws))
	}
}

func TestVideoIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"/watch?v=dQw4w9WgXcQ&t=10s", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?app=desktop&v=abc", "abc"},
		{"/shorts/abcdefghij1", "abcdefghij1"},
		{"/playlist?list=PLx", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := videoIDFromHref(tt.href); got != tt.want {
			t.Errorf("videoIDFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestChannelIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/@handle", "handle"},
		{"/channel/UCabc", "UCabc"},
		{"/c/vanity", "vanity"},
		{"/user/legacy", "legacy"},
		{"https://www.youtube.com/@handle?sub_confirmation=1", "handle"},
	}
	for _, tt := range tests {
		if got := channelIDFromHref(tt.href); got != tt.want {
			t.Errorf("channelIDFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestStealthScript(t *testing.T) {
	js := stealthScript()
	for _, want := range []string{
		"Object.defineProperty(navigator, 'webdriver'",
		"window.chrome = { runtime: {} };",
		"navigator.permissions.query",
	} {
		if !strings.Contains(js, want) {
			t.Errorf("stealth script missing %q", want)
		}
	}
}
