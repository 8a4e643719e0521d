package models

// ImageAsset is an uploaded image together with the lot key parsed from its name
type ImageAsset struct {
	Filename string `json:"filename"`
	LotKey   string `json:"lot_key"`
}

// LotGroup is every image that belongs to one lot, in directory listing order
type LotGroup struct {
	LotKey string   `json:"lot_key"`
	Images []string `json:"images"`
}

// CatalogEntry represents one row of the catalog table
type CatalogEntry struct {
	LotNumber           int    `json:"lot_number" yaml:"lot_number" parquet:"lot_number"`
	ImageFilenames      string `json:"image_filenames" yaml:"image_filenames" parquet:"image_filenames"`
	PublicURLs          string `json:"public_urls" yaml:"public_urls" parquet:"public_urls"`
	BaseCaption         string `json:"base_caption" yaml:"base_caption" parquet:"base_caption"`
	RefinedText         string `json:"refined_text" yaml:"refined_text" parquet:"refined_text"`
	EnhancedDescription string `json:"enhanced_description" yaml:"enhanced_description" parquet:"enhanced_description"`
}

// Failure stages
const (
	StageParse    = "parse"
	StageGenerate = "generate"
	StageUpload   = "upload"
	StagePublish  = "publish"
	StageDelete   = "delete"
)

// Failure records an error that was swallowed so the rest of a request could continue
type Failure struct {
	Stage string `json:"stage"`
	Item  string `json:"item"`
	Error string `json:"error"`
}

// NewFailure builds a Failure from an error
func NewFailure(stage, item string, err error) Failure {
	f := Failure{Stage: stage, Item: item}
	if err != nil {
		f.Error = err.Error()
	}
	return f
}
