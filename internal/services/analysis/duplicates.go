package analysis

import (
	"container/list"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
)

const (
	defaultDuplicateThreshold = 0.85
	defaultDuplicateCacheSize = 1000
)

// DuplicateDetector flags near-duplicate content by text similarity
// against a bounded cache of previously seen pages. The cache is LRU so
// long-running scans cannot grow it without limit.
type DuplicateDetector struct {
	logger    arbor.ILogger
	threshold float64
	capacity  int

	mu      sync.Mutex
	entries map[string]*list.Element // url -> element in order
	order   *list.List               // front = most recent
}

type cacheEntry struct {
	url     string
	bigrams map[string]int
}

// NewDuplicateDetector creates a detector with the given similarity
// threshold and cache capacity. Zero values select the defaults.
func NewDuplicateDetector(logger arbor.ILogger, threshold float64, capacity int) *DuplicateDetector {
	if threshold <= 0 || threshold > 1 {
		threshold = defaultDuplicateThreshold
	}
	if capacity <= 0 {
		capacity = defaultDuplicateCacheSize
	}

	return &DuplicateDetector{
		logger:    logger,
		threshold: threshold,
		capacity:  capacity,
		entries:   make(map[string]*list.Element),
		order:     list.New(),
	}
}

// Check compares text against all cached entries and then caches it under
// url. Returns the URL of the first cached entry whose similarity meets
// the threshold, or empty when the content is novel.
func (d *DuplicateDetector) Check(url, text string) (duplicateOf string, similarity float64) {
	grams := bigramProfile(text)

	d.mu.Lock()
	defer d.mu.Unlock()

	for element := d.order.Front(); element != nil; element = element.Next() {
		entry := element.Value.(*cacheEntry)
		if entry.url == url {
			continue
		}
		if score := diceCoefficient(grams, entry.bigrams); score >= d.threshold {
			d.logger.Debug().
				Str("url", url).
				Str("duplicate_of", entry.url).
				Float64("similarity", score).
				Msg("Near-duplicate content detected")
			d.insert(url, grams)
			return entry.url, score
		}
	}

	d.insert(url, grams)
	return "", 0
}

// Similarity computes the similarity of two texts on a 0..1 scale.
// It is reflexive (Similarity(a,a) == 1) and symmetric.
func Similarity(a, b string) float64 {
	return diceCoefficient(bigramProfile(a), bigramProfile(b))
}

func (d *DuplicateDetector) insert(url string, grams map[string]int) {
	if element, exists := d.entries[url]; exists {
		element.Value.(*cacheEntry).bigrams = grams
		d.order.MoveToFront(element)
		return
	}

	d.entries[url] = d.order.PushFront(&cacheEntry{url: url, bigrams: grams})

	for d.order.Len() > d.capacity {
		oldest := d.order.Back()
		d.order.Remove(oldest)
		delete(d.entries, oldest.Value.(*cacheEntry).url)
	}
}

// bigramProfile builds a character-bigram frequency map over the
// normalized text. Single-rune texts map to a single unigram so they
// still compare reflexively.
func bigramProfile(text string) map[string]int {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	runes := []rune(normalized)

	grams := make(map[string]int)
	if len(runes) == 0 {
		return grams
	}
	if len(runes) == 1 {
		grams[string(runes)] = 1
		return grams
	}

	for i := 0; i < len(runes)-1; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// diceCoefficient is the Sørensen–Dice similarity over two bigram
// frequency maps. Two empty texts are identical by definition.
func diceCoefficient(a, b map[string]int) float64 {
	totalA := 0
	for _, count := range a {
		totalA += count
	}
	totalB := 0
	for _, count := range b {
		totalB += count
	}

	if totalA == 0 && totalB == 0 {
		return 1.0
	}
	if totalA == 0 || totalB == 0 {
		return 0.0
	}

	overlap := 0
	for gram, countA := range a {
		if countB, ok := b[gram]; ok {
			if countA < countB {
				overlap += countA
			} else {
				overlap += countB
			}
		}
	}

	return 2.0 * float64(overlap) / float64(totalA+totalB)
}
