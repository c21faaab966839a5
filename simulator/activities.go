package simulator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"
)

var themes = []string{"travel", "family", "food", "nature", "friends", "music", "sports", "pets"}

type postResult struct {
	ID        string   `json:"_id"`
	LikeCount int      `json:"likeCount"`
	Likes     []string `json:"likes"`
}

// Mismatch is a post whose stored likes differ from what the toggles imply.
type Mismatch struct {
	PostID    string
	LikeCount int
	Likes     []string
	Expected  []string
}

type Report struct {
	PostsChecked int
	Mismatches   []Mismatch
}

// Consistent reports whether every post matched.
func (r *Report) Consistent() bool {
	return len(r.Mismatches) == 0
}

func (s *Simulator) createPosts(ctx context.Context) error {
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.config.NumWorkers)

	for i, user := range s.users {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, user *SimulatedUser) {
			defer wg.Done()
			defer func() { <-sem }()

			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(i)))
			for n := 0; n < s.config.PostsPerUser; n++ {
				theme := themes[s.zipfIndex(rng, len(themes))]
				var post postResult
				err := s.do(ctx, "POST", "/posts", user.Token, map[string]interface{}{
					"title":   fmt.Sprintf("%s memory #%d", theme, n+1),
					"message": fmt.Sprintf("%s remembers a day of %s", user.Name, theme),
					"tags":    []string{theme},
				}, &post)
				if err != nil {
					log.Printf("Failed to create post for %s: %v", user.Name, err)
					continue
				}

				s.mu.Lock()
				user.Posts = append(user.Posts, post.ID)
				s.posts = append(s.posts, post.ID)
				s.mu.Unlock()

				s.stats.mu.Lock()
				s.stats.TotalPosts++
				s.stats.mu.Unlock()
			}
		}(i, user)
	}
	wg.Wait()

	if len(s.posts) == 0 {
		return fmt.Errorf("no posts could be created")
	}
	return nil
}

// simulateActivity runs one goroutine per user. A user's toggles are
// sequential, so the final like state of each (post, user) pair is known
// even though many users hit the same posts at once.
func (s *Simulator) simulateActivity(ctx context.Context) {
	var wg sync.WaitGroup
	for i, user := range s.users {
		wg.Add(1)
		go func(i int, user *SimulatedUser) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(i)*7919))

			for round := 0; round < s.config.LikeRounds; round++ {
				if ctx.Err() != nil {
					return
				}
				postID := s.posts[s.zipfIndex(rng, len(s.posts))]

				var post postResult
				if err := s.do(ctx, "PATCH", "/posts/"+postID+"/likePost", user.Token, nil, &post); err != nil {
					log.Printf("Like toggle by %s failed: %v", user.Name, err)
					continue
				}
				user.LikedSet[postID] = !user.LikedSet[postID]

				s.stats.mu.Lock()
				s.stats.TotalToggles++
				s.stats.mu.Unlock()

				if rng.Float64() < s.config.CommentRate {
					err := s.do(ctx, "POST", "/posts/"+postID+"/comments", user.Token, map[string]string{
						"text": fmt.Sprintf("%s was here (round %d)", user.Name, round),
					}, nil)
					if err == nil {
						s.stats.mu.Lock()
						s.stats.TotalComments++
						s.stats.mu.Unlock()
					}
				}
			}
		}(i, user)
	}
	wg.Wait()
}

// verify re-reads every post and compares likes with the expected set.
func (s *Simulator) verify(ctx context.Context) (*Report, error) {
	expected := make(map[string][]string)
	for _, user := range s.users {
		for postID, liked := range user.LikedSet {
			if liked {
				expected[postID] = append(expected[postID], user.ID)
			}
		}
	}

	report := &Report{}
	for _, postID := range s.posts {
		var post postResult
		if err := s.do(ctx, "GET", "/posts/"+postID, "", nil, &post); err != nil {
			return nil, fmt.Errorf("failed to read post %s: %w", postID, err)
		}
		report.PostsChecked++

		want := append([]string(nil), expected[postID]...)
		got := append([]string(nil), post.Likes...)
		sort.Strings(want)
		sort.Strings(got)

		if post.LikeCount != len(post.Likes) || !equalStrings(want, got) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				PostID:    postID,
				LikeCount: post.LikeCount,
				Likes:     post.Likes,
				Expected:  want,
			})
		}
	}
	return report, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
