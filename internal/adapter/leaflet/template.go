package leaflet

// tmplPage is the standalone map page. All view data rides in one JSON blob;
// the script below only binds it to the Leaflet widget, it makes no encoding
// decisions of its own.
const tmplPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Earthquake Map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
      integrity="sha256-p4NxAoJBhIIN+hmNHrzRCf9tD/miZyoHS5obTRR9BMY=" crossorigin=""/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
        integrity="sha256-20nQCchB9co0qIjJZRGuk2/Z9VM+kNiyxNV1lvTlZBo=" crossorigin=""></script>
<style>
html,body{height:100%;margin:0;padding:0}
#map{height:100%;width:100%}
.legend{background:#fff;padding:8px 12px;border-radius:4px;box-shadow:0 1px 4px rgba(0,0,0,.3);font:12px/1.4 Arial,sans-serif;min-width:180px}
.legend h4{margin:0 0 6px;font-size:12px}
.legend-bar{height:12px;border-radius:2px;margin-bottom:4px}
.legend-labels{display:flex;justify-content:space-between}
</style>
</head>
<body>
<div id="map"></div>
<script>
const PAGE = {{.PageJSON}};

const baseLayers = {};
let defaultBase = null;
for (const layer of PAGE.baseLayers) {
  const opts = {attribution: layer.attribution};
  if (layer.maxZoom) {
    opts.maxZoom = layer.maxZoom;
  }
  baseLayers[layer.name] = L.tileLayer(layer.url, opts);
  if (!defaultBase) {
    defaultBase = baseLayers[layer.name];
  }
}

const quakes = L.layerGroup(PAGE.markers.map(m =>
  L.circleMarker([m.lat, m.lon], {
    radius: m.radius,
    fillColor: m.color,
    fillOpacity: PAGE.fillOpacity,
    stroke: false
  }).bindPopup(m.popup)));

const map = L.map("map", {
  center: PAGE.center,
  zoom: PAGE.zoom,
  layers: [defaultBase, quakes]
});

for (const g of PAGE.guides) {
  L.polyline([g.from, g.to], {color: g.color, weight: g.weight}).addTo(map);
}

L.control.layers(baseLayers, {[PAGE.overlayName]: quakes}, {collapsed: false}).addTo(map);

const legend = L.control({position: "bottomright"});
legend.onAdd = () => {
  const div = L.DomUtil.create("div", "legend");
  div.innerHTML = PAGE.legendHTML;
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`

// loadingHTML is served while the first render pass is still in flight. It
// refreshes itself until the map or the failure page takes over.
const loadingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta http-equiv="refresh" content="3">
<title>Earthquake Map</title>
<style>
body{font:16px/1.5 Arial,sans-serif;display:flex;align-items:center;justify-content:center;height:100vh;margin:0;color:#444}
</style>
</head>
<body>
<p>Loading earthquake data&hellip;</p>
</body>
</html>
`

// failedHTML is the explicit failure state: shown whenever no pass has ever
// succeeded and the last attempt failed. The wording is fixed.
const failedHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Earthquake Map</title>
<style>
body{font:16px/1.5 Arial,sans-serif;display:flex;align-items:center;justify-content:center;height:100vh;margin:0;color:#a33}
</style>
</head>
<body>
<p>unable to load earthquake data</p>
</body>
</html>
`
