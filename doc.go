// Package cameramanager discovers the video devices of a vehicle or embedded
// system, probes what they can produce, and turns requested stream
// configurations into running GStreamer pipelines.
//
// # Quick Start
//
// Discover the local cameras and start an H264 stream from the first one:
//
//	cameras := cameramanager.Cameras()
//	if len(cameras) == 0 {
//	    log.Fatal("no cameras found")
//	}
//
//	formats, err := cameras[0].Formats()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("%s offers %d formats", cameras[0].Name, len(formats))
//
//	manager := cameramanager.NewManager()
//	defer manager.Close()
//
//	endpoint, _ := url.Parse("udp://192.168.0.1:5600")
//	id, err := manager.Add(&cameramanager.VideoAndStreamInformation{
//	    Name: "Front Camera",
//	    StreamInformation: cameramanager.StreamInformation{
//	        Endpoints: []*url.URL{endpoint},
//	        Configuration: cameramanager.VideoCaptureConfiguration{
//	            Encode:        cameramanager.EncodeH264,
//	            Width:         1920,
//	            Height:        1080,
//	            FrameInterval: cameramanager.FrameInterval{Numerator: 1, Denominator: 30},
//	        },
//	    },
//	    VideoSource: cameras[0],
//	})
//
// # Features
//
//   - V4L2 device discovery with USB and legacy-platform classification;
//     cameras keep their identity across device renumbering via the bus
//     descriptor
//   - Capability probing: pixel formats, frame sizes and frame intervals,
//     with stepwise ranges discretized over a standard size grid
//   - Hardware control enumeration and adjustment (sliders, switches, menus)
//   - Stream validation and GStreamer pipeline synthesis for H264, YUYV and
//     MJPG over UDP and RTSP endpoints, plus pass-through redirects
//   - Synthetic test-pattern sources for running without camera hardware
//   - YAML persistence so configured streams survive a restart
//
// # Dependencies
//
// GStreamer 1.x must be installed on the system:
//
//	# Ubuntu/Debian
//	sudo apt-get install \
//	    gstreamer1.0-tools \
//	    gstreamer1.0-plugins-base \
//	    gstreamer1.0-plugins-good \
//	    gstreamer1.0-plugins-bad \
//	    gstreamer1.0-plugins-ugly \
//	    gstreamer1.0-libav
//
// Verify the installation:
//
//	gst-inspect-1.0 --version
//	gst-inspect-1.0 v4l2src
//	gst-inspect-1.0 multiudpsink
//
// Device discovery and control use the V4L2 ioctl interface directly and
// need read/write access to the /dev/video* nodes (the video group on most
// distributions).
//
// # Limitations
//
//   - H265 capture is recognized but not streamed yet
//   - RTSP streams are always served on port 8554
//   - No audio (video only)
package cameramanager
