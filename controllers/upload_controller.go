package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ardiansyahdp/konveksi-api/services"
	"github.com/ardiansyahdp/konveksi-api/utils"
)

// UploadBukti handles POST /api/v1/uploads/bukti-pembayaran - stores a
// payment proof screenshot and returns its storage key and viewing URL. The
// returned key goes into the transaction's file_screenshot field.
func UploadBukti(c *gin.Context) {
	uploadFile(c, services.UploadBuktiPembayaran)
}

// UploadReferensi handles POST /api/v1/uploads/referensi-desain - stores a
// custom design reference image for an order with referensi_custom=true.
func UploadReferensi(c *gin.Context) {
	uploadFile(c, services.UploadReferensiDesain)
}

func uploadFile(c *gin.Context, kind services.UploadKind) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}

	uploadService := services.GetUploadService()
	if uploadService == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DEPENDENCY_ERROR",
				"message": "Upload service is not configured",
			},
		})
		return
	}

	key, err := uploadService.UploadImage(fileHeader, kind)
	if err != nil {
		if uploadErr, ok := err.(*utils.FileUploadError); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to store the uploaded file",
			},
		})
		return
	}

	url, err := uploadService.GetFileURL(key)
	if err != nil {
		// The file is stored; a URL can be fetched again later.
		url = ""
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}
