package preview

// The viewer page draws binary frame messages onto a canvas, shows text
// messages as the status line and sends keyboard and pointer input back.
const viewerPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>raylive</title>
<style>
body { background: #202020; color: #e0e0e0; font-family: monospace; margin: 1em; }
canvas { display: block; outline: none; image-rendering: pixelated; }
label { margin-right: 1em; }
input { width: 5em; }
</style>
</head>
<body>
<canvas id="frame" tabindex="0" width="800" height="450"></canvas>
<p id="status">Waiting for the first frame</p>
<p>
<label>focal length <input id="focal_length" type="number" step="0.1" min="0.1" value="1"></label>
<label>width <input id="width" type="number" step="32" min="16" value="800"></label>
<label>anti-alias <input id="anti_alias" type="number" step="1" min="1" value="1"></label>
</p>
<script>
const canvas = document.getElementById("frame");
const ctx = canvas.getContext("2d");
const status = document.getElementById("status");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.binaryType = "arraybuffer";

function send(msg) {
  if (ws.readyState === WebSocket.OPEN) {
    ws.send(JSON.stringify(msg));
  }
}

ws.onmessage = (ev) => {
  if (typeof ev.data === "string") {
    status.textContent = ev.data;
    return;
  }
  const view = new DataView(ev.data);
  const w = view.getUint32(0, true);
  const h = view.getUint32(4, true);
  if (canvas.width !== w || canvas.height !== h) {
    canvas.width = w;
    canvas.height = h;
  }
  const pixels = new Uint8ClampedArray(ev.data, 8, w * h * 4);
  ctx.putImageData(new ImageData(pixels, w, h), 0, 0);
};
ws.onclose = () => { status.textContent = "Disconnected"; };

function pointer(ev) {
  const r = canvas.getBoundingClientRect();
  const x = Math.min(Math.max((ev.clientX - r.left) / Math.max(r.width - 1, 1), 0), 1);
  const y = Math.min(Math.max((ev.clientY - r.top) / Math.max(r.height - 1, 1), 0), 1);
  return { x: x, y: y };
}

canvas.addEventListener("keydown", (ev) => {
  if (ev.repeat) return;
  ev.preventDefault();
  send({ type: "keydown", key: ev.key });
});
canvas.addEventListener("keyup", (ev) => {
  ev.preventDefault();
  send({ type: "keyup", key: ev.key });
});
canvas.addEventListener("mousemove", (ev) => send(Object.assign({ type: "pointermove" }, pointer(ev))));
canvas.addEventListener("mousedown", (ev) => { canvas.focus(); send(Object.assign({ type: "pointerdown" }, pointer(ev))); });
canvas.addEventListener("mouseup", (ev) => send(Object.assign({ type: "pointerup" }, pointer(ev))));
canvas.addEventListener("mouseleave", () => send({ type: "pointerleave" }));

for (const name of ["focal_length", "width", "anti_alias"]) {
  document.getElementById(name).addEventListener("change", (ev) => {
    const value = parseFloat(ev.target.value);
    if (!isNaN(value)) {
      send({ type: "control", control: name, value: value });
    }
  });
}
</script>
</body>
</html>
`
