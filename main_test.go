package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ardiansyahdp/konveksi-api/config"
)

func callHandler(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	handler(c)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := callHandler(healthCheck)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Konveksi API is running", response["message"])
	assert.Len(t, response, 2, "health payload should carry only success and message")
}

func TestDatabaseStatusWithLiveConnection(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	config.SetDB(db)

	w := callHandler(databaseStatus)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
}

func TestDatabaseStatusWithClosedConnection(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.Close()
	config.SetDB(db)

	w := callHandler(databaseStatus)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["success"])
	errObj := response["error"].(map[string]interface{})
	assert.Equal(t, "DATABASE_CONNECTION_ERROR", errObj["code"])
}
