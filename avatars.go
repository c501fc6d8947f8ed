package contentsync

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	avatarWidth     = 256
	jpegQuality     = 80
	maxAvatarSize   = 5 << 20 // 5MB
	avatarsSubdir   = "avatars"
	avatarFormField = "avatar"
)

// processAvatar decodes an image from src, scales it to avatarWidth and
// encodes it as JPEG.
func processAvatar(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("decode image: empty image")
	}

	if w != avatarWidth {
		newH := max(h*avatarWidth/w, 1)
		dst := image.NewRGBA(image.Rect(0, 0, avatarWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// saveAvatar stores the processed avatar of a platform and returns its public URL.
func (a *App) saveAvatar(userID, platformID string, src io.Reader) (string, error) {
	if _, err := a.Store.GetPlatform(userID, platformID); err != nil {
		return "", err
	}
	data, err := processAvatar(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	dir := filepath.Join(a.Config.StaticDir, avatarsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create avatars dir: %w", err)
	}
	name := platformID + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}

	avatarURL := "/public/" + avatarsSubdir + "/" + name
	if err := a.Store.SetPlatformAvatar(userID, platformID, avatarURL); err != nil {
		return "", err
	}
	a.Stats.Invalidate(userID)
	return avatarURL, nil
}

func (a *App) handleAvatarUpload(c echo.Context) error {
	file, err := c.FormFile(avatarFormField)
	if err != nil {
		return a.renderPlatforms(c, http.StatusBadRequest, "", "No image file provided.")
	}
	if file.Size > maxAvatarSize {
		return a.renderPlatforms(c, http.StatusBadRequest, "", "File too large (max 5MB).")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := a.saveAvatar(CurrentUserID(c), c.Param("id"), src); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.ErrNotFound
		case errors.Is(err, ErrInvalidInput):
			return a.renderPlatforms(c, http.StatusBadRequest, "", "Invalid image.")
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/platforms/?msg=avatar")
}
