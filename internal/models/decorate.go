package models

import "gorm.io/gorm"

// Aggregate scores are computed fresh on every read; nothing here is cached.

type aggRow struct {
	ID    uint
	Total int
}

// DecoratePosts fills VoteScore, UserVote and CommentCount for a page of posts.
// viewer is the requesting user's name, or empty for anonymous requests.
func DecoratePosts(db *gorm.DB, posts []Post, viewer string) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var scores []aggRow
	err := db.Model(&Vote{}).
		Select("post_id AS id, COALESCE(SUM(value), 0) AS total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&scores).Error
	if err != nil {
		return err
	}

	var counts []aggRow
	err = db.Model(&Comment{}).
		Select("post_id AS id, COUNT(*) AS total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return err
	}

	userVotes := map[uint]int{}
	if viewer != "" {
		var rows []aggRow
		err = db.Model(&Vote{}).
			Select("post_id AS id, value AS total").
			Where("username = ? AND post_id IN ?", viewer, ids).
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, r := range rows {
			userVotes[r.ID] = r.Total
		}
	}

	scoreByID := map[uint]int{}
	for _, r := range scores {
		scoreByID[r.ID] = r.Total
	}
	countByID := map[uint]int{}
	for _, r := range counts {
		countByID[r.ID] = r.Total
	}

	for i := range posts {
		posts[i].VoteScore = scoreByID[posts[i].ID]
		posts[i].CommentCount = countByID[posts[i].ID]
		posts[i].UserVote = userVotes[posts[i].ID]
	}
	return nil
}

// DecoratePost is the single-item variant of DecoratePosts.
func DecoratePost(db *gorm.DB, post *Post, viewer string) error {
	page := []Post{*post}
	if err := DecoratePosts(db, page, viewer); err != nil {
		return err
	}
	post.VoteScore = page[0].VoteScore
	post.UserVote = page[0].UserVote
	post.CommentCount = page[0].CommentCount
	return nil
}

// DecorateComments fills VoteScore and UserVote for a set of comments.
func DecorateComments(db *gorm.DB, comments []Comment, viewer string) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}

	var scores []aggRow
	err := db.Model(&Vote{}).
		Select("comment_id AS id, COALESCE(SUM(value), 0) AS total").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&scores).Error
	if err != nil {
		return err
	}

	userVotes := map[uint]int{}
	if viewer != "" {
		var rows []aggRow
		err = db.Model(&Vote{}).
			Select("comment_id AS id, value AS total").
			Where("username = ? AND comment_id IN ?", viewer, ids).
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, r := range rows {
			userVotes[r.ID] = r.Total
		}
	}

	scoreByID := map[uint]int{}
	for _, r := range scores {
		scoreByID[r.ID] = r.Total
	}

	for i := range comments {
		comments[i].VoteScore = scoreByID[comments[i].ID]
		comments[i].UserVote = userVotes[comments[i].ID]
	}
	return nil
}

// All returns every model for migration.
func All() []interface{} {
	return []interface{}{&User{}, &Sub{}, &Post{}, &Comment{}, &Vote{}}
}
