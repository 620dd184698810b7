package main

// General API documentation for swaggo. Generated docs are not committed;
// build with -tags=swagger after generating to serve the UI.
//
// @title           assetd API
// @version         1.0
// @description     HTTP control surface for the asset residency manager.
//
// @BasePath  /
//
// @schemes http
