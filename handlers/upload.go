package handlers

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"photogram/storage"
)

const maxUploadFiles = 10

// UploadPostMedia stores up to ten files from the post_media multipart
// field and returns their stored names and public paths.
func (a *API) UploadPostMedia(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form data"})
		return
	}

	files := form.File["post_media"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}
	if len(files) > maxUploadFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many files"})
		return
	}

	type stored struct {
		Name string `json:"name"`
		Dest string `json:"dest"`
	}
	saved := make([]stored, 0, len(files))

	for _, fh := range files {
		name, dest, err := a.Media.SavePost(userID.Hex(), fh)
		if err != nil {
			// Roll back what this request already wrote.
			for _, s := range saved {
				if rmErr := a.Media.DeletePost(userID.Hex(), s.Name); rmErr != nil {
					log.Printf("UploadPostMedia rollback %q: %v", s.Name, rmErr)
				}
			}
			status, msg := storageError(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}
		saved = append(saved, stored{Name: name, Dest: dest})
	}

	c.JSON(http.StatusOK, saved)
}

func (a *API) DeleteUpload(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := a.Media.DeletePost(userID.Hex(), c.Param("name")); err != nil {
		status, msg := storageError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUploads unlinks a batch of files; every name must carry the
// caller's ownership prefix or nothing is deleted.
func (a *API) DeleteUploads(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var names []string
	if err := c.ShouldBindJSON(&names); err != nil || len(names) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "List of file names required"})
		return
	}

	uid := userID.Hex()
	for _, name := range names {
		if !ownsFile(uid, name) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No access"})
			return
		}
	}

	for _, name := range names {
		if err := a.Media.DeletePost(uid, name); err != nil {
			status, msg := storageError(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func ownsFile(userID, name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return name[:i] == userID
		}
	}
	return false
}

func storageError(err error) (int, string) {
	switch err {
	case storage.ErrForbidden:
		return http.StatusForbidden, "No access"
	case storage.ErrBadType:
		return http.StatusBadRequest, "Only .png, .jpg, .jpeg and .mp4 format allowed"
	case storage.ErrTooLarge:
		return http.StatusBadRequest, "File is too large"
	case storage.ErrBadFilename:
		return http.StatusBadRequest, "Invalid file name"
	}
	if os.IsNotExist(err) {
		return http.StatusNotFound, "File not found"
	}
	log.Printf("storage error: %v", err)
	return http.StatusInternalServerError, "File operation failed"
}
