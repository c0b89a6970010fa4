package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/ports"
	qrcode "github.com/skip2/go-qrcode"
)

// QR code size bounds in pixels / Bornes de taille des QR codes en pixels
const (
	MinQRCodeSize     = 128
	MaxQRCodeSize     = 1024
	DefaultQRCodeSize = 256
)

// SharePostService manages shared links and tips / Gère les liens et astuces partagés
type SharePostService struct {
	contentBase
	sharePosts  ports.SharePostRepository
	frontendURL string
}

// NewSharePostService creates share post service / Crée le service des partages
func NewSharePostService(sharePosts ports.SharePostRepository, frontendURL string, deps ContentDeps) *SharePostService {
	return &SharePostService{
		contentBase: newContentBase(deps),
		sharePosts:  sharePosts,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (s *SharePostService) Create(ctx context.Context, actor domain.Actor, in domain.SharePostInput) (*domain.SharePost, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post, err := s.sharePosts.Create(ctx, actor.ID, in)
	if err != nil {
		return nil, storeError(err, "failed to create share post", "user_id", actor.ID)
	}

	s.written("share_post", "create")
	s.publish(ctx, domain.ActivitySharePostCreated, actor.ID, post.ID, map[string]any{"category": post.Category})
	return post, nil
}

func (s *SharePostService) Get(ctx context.Context, viewerID, id int64) (*domain.SharePost, error) {
	post, err := s.sharePosts.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, storeError(err, "failed to load share post", "share_post_id", id)
	}
	return post, nil
}

func (s *SharePostService) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.SharePostPatch) (*domain.SharePost, error) {
	post, err := s.Get(ctx, actor.ID, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanModify(ctx, actor, post.Author.ID); err != nil {
		return nil, err
	}

	in := patch.Merge(post)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	post.Title = in.Title
	post.Description = in.Description
	post.URL = in.URL
	post.Category = in.Category

	if err := s.sharePosts.Update(ctx, post); err != nil {
		return nil, storeError(err, "failed to update share post", "share_post_id", id)
	}

	s.written("share_post", "update")
	s.publish(ctx, domain.ActivitySharePostUpdated, actor.ID, id, map[string]any{"category": post.Category})
	return post, nil
}

func (s *SharePostService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	post, err := s.Get(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if err := s.access.CanModify(ctx, actor, post.Author.ID); err != nil {
		return err
	}
	if err := s.sharePosts.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete share post", "share_post_id", id)
	}

	s.written("share_post", "delete")
	s.publish(ctx, domain.ActivitySharePostDeleted, actor.ID, id, nil)
	return nil
}

func (s *SharePostService) List(ctx context.Context, viewerID int64, filter domain.SharePostFilter) ([]*domain.SharePost, int, error) {
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.Page = filter.Page.Normalize()
	posts, total, err := s.sharePosts.List(ctx, filter, viewerID)
	if err != nil {
		return nil, 0, storeError(err, "failed to list share posts")
	}
	return posts, total, nil
}

// ShareURL returns the link encoded in QR codes / Retourne le lien encodé dans les QR codes
func (s *SharePostService) ShareURL(post *domain.SharePost) string {
	if post.URL != "" {
		return post.URL
	}
	return fmt.Sprintf("%s/share/%d", s.frontendURL, post.ID)
}

// QRCode renders the share link as PNG / Génère le lien de partage en PNG
func (s *SharePostService) QRCode(ctx context.Context, viewerID, id int64, size int) ([]byte, error) {
	post, err := s.Get(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(s.ShareURL(post), qrcode.Medium, ClampQRCodeSize(size))
	if err != nil {
		slog.Error("failed to render qr code", "share_post_id", id, "err", err)
		return nil, errInternal
	}
	return png, nil
}

// ClampQRCodeSize keeps size within bounds, zero means default / Borne la taille, zéro vaut la valeur par défaut
func ClampQRCodeSize(size int) int {
	switch {
	case size == 0:
		return DefaultQRCodeSize
	case size < MinQRCodeSize:
		return MinQRCodeSize
	case size > MaxQRCodeSize:
		return MaxQRCodeSize
	}
	return size
}
